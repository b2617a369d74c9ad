package thumbnail

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/multierr"

	"github.com/Faultbox/buildings-gallery/internal/asset/assettest"
	"github.com/Faultbox/buildings-gallery/internal/catalog"
)

func TestWriteAll(t *testing.T) {
	f := newFixture(t)
	f.fetcher.Add("models/tower.glb", assettest.BoxData(2))
	dir := filepath.Join(t.TempDir(), "thumbs")

	buildings := []catalog.Building{
		{ID: "tower", ModelPath: "models/tower.glb"},
		{ID: "ruin", ModelPath: "models/ruin.glb"},
		{ID: "castle", ModelPath: "models/castle.glb"},
		{ID: "../escape", ModelPath: "models/castle.glb"},
	}
	res, err := f.r.WriteAll(context.Background(), buildings, dir, 2)

	if want := []string{"castle", "tower"}; !reflect.DeepEqual(res.Written, want) {
		t.Errorf("written = %v, want %v", res.Written, want)
	}
	if want := []string{"../escape", "ruin"}; !reflect.DeepEqual(res.Failed, want) {
		t.Errorf("failed = %v, want %v", res.Failed, want)
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("errors = %d (%v), want 2", got, err)
	}
	if !errors.Is(err, ErrRasterize) {
		t.Errorf("err = %v, want ErrRasterize", err)
	}

	for _, id := range res.Written {
		data, err := os.ReadFile(filepath.Join(dir, id+".png"))
		if err != nil {
			t.Fatal(err)
		}
		if b := decode(t, data).Bounds(); b.Dx() != 40 || b.Dy() != 30 {
			t.Errorf("%s bounds = %v", id, b)
		}
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "escape.png")); err == nil {
		t.Error("entry id escaped the output directory")
	}
}

func TestWriteAllEmpty(t *testing.T) {
	f := newFixture(t)
	res, err := f.r.WriteAll(context.Background(), nil, t.TempDir(), 0)
	if err != nil || len(res.Written)+len(res.Failed) != 0 {
		t.Errorf("res = %+v, err = %v", res, err)
	}
}
