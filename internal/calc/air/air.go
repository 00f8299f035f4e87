package air

// Properties of dry air at a dry-bulb temperature, from closed-form correlations.
type Properties struct {
	Density            float64 // kg/m3
	SpecificVolume     float64 // m3/kg
	DynamicViscosity   float64 // Pa*s
	KinematicViscosity float64 // m2/s
	Enthalpy           float64 // kJ/kg
}

// At evaluates the correlations for a temperature in °C.
func At(t float64) Properties {
	rho := Density(t)
	return Properties{
		Density:            rho,
		SpecificVolume:     1 / rho,
		DynamicViscosity:   DynamicViscosity(t),
		KinematicViscosity: KinematicViscosity(t),
		Enthalpy:           Enthalpy(t),
	}
}

func Density(t float64) float64 {
	return 353.089 / (t + 273.15)
}

func SpecificVolume(t float64) float64 {
	return 1 / Density(t)
}

func DynamicViscosity(t float64) float64 {
	return (1.7162 + 4.8210e-2*t - 2.17419e-5*t*t - 7.0665e-9*t*t*t) * 1e-6
}

func KinematicViscosity(t float64) float64 {
	return (13.2 + 0.1*t) * 1e-6
}

// Enthalpy uses a constant cp of 1.006 kJ/(kg*K) from 0 °C.
func Enthalpy(t float64) float64 {
	return 1.006 * t
}
