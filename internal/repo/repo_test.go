package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"
)

// exercise runs the same scenario against any Repository. suffix keeps
// names unique when the backing store is shared.
func exercise(t *testing.T, r Repository, suffix string) {
	ctx := context.Background()

	uid, err := r.CreateUser(ctx, "engineer"+suffix, "eng@example.com", "hash")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.CreateUser(ctx, "engineer"+suffix, "other@example.com", "hash"); err == nil {
		t.Error("expected duplicate login to fail")
	}
	id, hash, err := r.GetByLogin(ctx, "engineer"+suffix)
	if err != nil || id != uid || hash != "hash" {
		t.Errorf("GetByLogin: %d %q %v", id, hash, err)
	}
	if _, _, err := r.GetByLogin(ctx, "nobody"+suffix); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	u, err := r.GetUserByID(ctx, uid)
	if err != nil || u.Login != "engineer"+suffix {
		t.Errorf("GetUserByID: %+v %v", u, err)
	}

	tb, err := r.CreateTurbine(ctx, "K-300"+suffix)
	if err != nil {
		t.Fatal(err)
	}
	v, err := r.CreateValve(ctx, Valve{
		TurbineID:      &tb.ID,
		Drawing:        "SV-1" + suffix,
		Type:           "stop",
		RodDiameter:    36,
		Clearance:      0.271,
		RoundingRadius: 2,
		SectionLengths: []float64{513, 89, 68},
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.ValveByDrawing(ctx, "SV-1"+suffix)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != v.ID || len(got.SectionLengths) != 3 || got.SectionLengths[1] != 89 {
		t.Errorf("ValveByDrawing: %+v", got)
	}
	byTurbine, err := r.ValvesByTurbine(ctx, "K-300"+suffix)
	if err != nil || len(byTurbine) != 1 {
		t.Errorf("ValvesByTurbine: %v %v", byTurbine, err)
	}
	owner, err := r.TurbineByValve(ctx, "SV-1"+suffix)
	if err != nil || owner.ID != tb.ID {
		t.Errorf("TurbineByValve: %+v %v", owner, err)
	}

	got.SectionLengths = []float64{500, 90}
	if _, err := r.UpdateValve(ctx, got); err != nil {
		t.Fatal(err)
	}
	byID, err := r.ValveByID(ctx, v.ID)
	if err != nil || len(byID.SectionLengths) != 2 {
		t.Errorf("ValveByID after update: %+v %v", byID, err)
	}

	params, _ := json.Marshal(map[string]any{"valves": 2})
	saved, err := r.SaveResult(ctx, Result{UserID: uid, ValveDrawing: "SV-1" + suffix, Parameters: params, Output: json.RawMessage(`{"sections":[]}`)})
	if err != nil {
		t.Fatal(err)
	}
	if saved.ID == 0 || saved.PublicID == "" || saved.CreatedAt.IsZero() {
		t.Errorf("SaveResult: %+v", saved)
	}
	results, err := r.ResultsByValve(ctx, "SV-1"+suffix)
	if err != nil || len(results) != 1 {
		t.Fatalf("ResultsByValve: %v %v", results, err)
	}
	var p map[string]any
	if err := json.Unmarshal(results[0].Parameters, &p); err != nil || p["valves"] != float64(2) {
		t.Errorf("stored parameters: %s", results[0].Parameters)
	}
	mine, err := r.ResultsByUser(ctx, uid)
	if err != nil || len(mine) != 1 {
		t.Errorf("ResultsByUser: %v %v", mine, err)
	}
	if err := r.DeleteResult(ctx, saved.ID, uid+1000); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleting someone else's result: %v", err)
	}
	if err := r.DeleteResult(ctx, saved.ID, uid); err != nil {
		t.Error(err)
	}

	if err := r.DeleteTurbine(ctx, tb.ID); err != nil {
		t.Fatal(err)
	}
	orphan, err := r.ValveByID(ctx, v.ID)
	if err != nil || orphan.TurbineID != nil {
		t.Errorf("valve after turbine delete: %+v %v", orphan, err)
	}
	if err := r.DeleteValve(ctx, v.ID); err != nil {
		t.Error(err)
	}
	if _, err := r.ValveByID(ctx, v.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := r.DeleteValve(ctx, v.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}
}

func TestMemoryRepository(t *testing.T) {
	exercise(t, NewMemoryRepository(), "")
}

func TestMemoryRepositoryCopiesValves(t *testing.T) {
	r := NewMemoryRepository()
	lengths := []float64{1, 2}
	v, err := r.CreateValve(context.Background(), Valve{Drawing: "A", SectionLengths: lengths})
	if err != nil {
		t.Fatal(err)
	}
	lengths[0] = 99
	got, _ := r.ValveByID(context.Background(), v.ID)
	if got.SectionLengths[0] != 1 {
		t.Error("stored valve shares memory with the caller")
	}
	if _, err := r.CreateValve(context.Background(), Valve{Drawing: "B", TurbineID: new(int)}); err == nil {
		t.Error("expected unknown turbine to fail")
	}
}

func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db, err := Open(ctx, dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := Migrate(ctx, db); err != nil {
		t.Fatal(err)
	}
	exercise(t, NewPostgresRepository(db), fmt.Sprintf("-%d", time.Now().UnixNano()))
}
