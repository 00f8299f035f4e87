package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

type User struct {
	ID        int       `json:"id"`
	Login     string    `json:"login"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Turbine struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Valve is a catalogue entry. Dimensions are in mm.
type Valve struct {
	ID              int       `json:"id"`
	TurbineID       *int      `json:"turbine_id"`
	Drawing         string    `json:"drawing"`
	Type            string    `json:"type"`
	Source          string    `json:"source"`
	Verified        bool      `json:"verified"`
	Verifier        string    `json:"verifier"`
	BushingDrawing  string    `json:"bushing_drawing"`
	RodDrawing      string    `json:"rod_drawing"`
	RodDiameter     float64   `json:"rod_diameter"`
	RodAccuracy     float64   `json:"rod_accuracy"`
	BushingAccuracy float64   `json:"bushing_accuracy"`
	Clearance       float64   `json:"clearance"`
	RoundingRadius  float64   `json:"rounding_radius"`
	SectionLengths  []float64 `json:"section_lengths"`
}

// Result is a stored calculation. Parameters and Output keep the JSON of the
// request and the response.
type Result struct {
	ID           int             `json:"id"`
	PublicID     string          `json:"public_id"`
	UserID       int             `json:"user_id"`
	ValveDrawing string          `json:"valve_drawing"`
	CreatedAt    time.Time       `json:"created_at"`
	Parameters   json.RawMessage `json:"parameters"`
	Output       json.RawMessage `json:"output"`
}

type Repository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	GetByLogin(ctx context.Context, login string) (int, string, error)
	GetUserByID(ctx context.Context, id int) (User, error)

	ListTurbines(ctx context.Context) ([]Turbine, error)
	CreateTurbine(ctx context.Context, name string) (Turbine, error)
	DeleteTurbine(ctx context.Context, id int) error
	TurbineByValve(ctx context.Context, drawing string) (Turbine, error)

	ListValves(ctx context.Context) ([]Valve, error)
	ValvesByTurbine(ctx context.Context, turbine string) ([]Valve, error)
	ValveByDrawing(ctx context.Context, drawing string) (Valve, error)
	ValveByID(ctx context.Context, id int) (Valve, error)
	CreateValve(ctx context.Context, v Valve) (Valve, error)
	UpdateValve(ctx context.Context, v Valve) (Valve, error)
	DeleteValve(ctx context.Context, id int) error

	SaveResult(ctx context.Context, r Result) (Result, error)
	ResultsByValve(ctx context.Context, drawing string) ([]Result, error)
	ResultsByUser(ctx context.Context, userID int) ([]Result, error)
	DeleteResult(ctx context.Context, id, userID int) error
}
