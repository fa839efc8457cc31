// Package testutil provides shared test helpers for fixture directories and databases.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/designa/internal/catalog"
	"github.com/starford/designa/internal/models"
	"github.com/starford/designa/internal/store"
)

// Artworks returns a small gallery with mixed software and type shapes.
func Artworks() []models.Artwork {
	conceptID := 2
	return []models.Artwork{
		{ID: 1, Title: "Ember Knight", Type: models.TypeName("Character"), Image: "/img/ember.jpg",
			Tags: []string{"fantasy", "armor"}, Software: []string{"Photoshop"},
			SubImages: []string{"/img/ember-sketch.jpg", "/img/ember-wip.jpg"}},
		{ID: 2, Title: "Salt Harbor", Type: models.ArtworkType{Name: "Environment", ID: &conceptID}, Image: "/img/harbor.jpg",
			Tags: []string{"coast"}, Software: []string{"Blender", "Photoshop", "Substance Painter"}},
		{ID: 3, Title: "Moss Golem", Type: models.TypeName("Character"), Image: "/img/golem.jpg",
			Tags: []string{"fantasy"}, Software: []string{"ZBrush", "Photoshop"}},
		{ID: 4, Title: "Night Market", Type: models.TypeName("Environment"), Image: "/img/market.jpg",
			Tags: []string{"city"}, Software: []string{"Blender"}},
	}
}

// WorkshopData returns two categories and three workshops.
func WorkshopData() models.WorkshopData {
	return models.WorkshopData{
		Categories: []models.WorkshopCategory{
			{ID: "concept-art", Label: "Characters", Color: "#44BBA4"},
			{ID: "environment-art", Label: "Environment", Color: "#393E41"},
		},
		Workshops: []models.Workshop{
			{ID: 1, Title: "Character Sheets", Slug: "character-sheets", DateRange: "2030-04-10 to 2030-04-12",
				Type: "concept-art", Level: models.LevelBeginner, Skills: []string{"Anatomy", "Silhouette"}, Price: "$120", Seats: 12},
			{ID: 2, Title: "Modular Kits", Slug: "modular-kits", DateRange: "2030-02-01 to 2030-02-03",
				Type: "environment-art", Level: models.LevelAdvanced, Skills: []string{"Blender", "Trim sheets"}, Price: "$240", Seats: 8},
			{ID: 3, Title: "Past Sketch Jam", Slug: "past-sketch-jam", DateRange: "2020-01-01 to 2020-01-02",
				Type: "concept-art", Level: models.LevelIntermediate, Skills: []string{"Gesture"}, Price: "$40", Seats: 30},
		},
	}
}

// WriteFixtures writes artworks.json and workshops.json into dir.
func WriteFixtures(t *testing.T, dir string, artworks []models.Artwork, workshops models.WorkshopData) {
	t.Helper()
	writeJSON(t, filepath.Join(dir, catalog.ArtworksFile), artworks)
	writeJSON(t, filepath.Join(dir, catalog.WorkshopsFile), workshops)
}

// TestCatalog creates a fixture directory with the sample data and loads it.
func TestCatalog(t *testing.T) (string, *catalog.Catalog) {
	t.Helper()
	dir := t.TempDir()
	WriteFixtures(t, dir, Artworks(), WorkshopData())
	p, err := catalog.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	c, err := catalog.New(p)
	if err != nil {
		t.Fatal(err)
	}
	return dir, c
}

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "designa-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}
