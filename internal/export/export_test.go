package export

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"honnef.co/go/curve"

	"github.com/th2-export/backend/internal/models"
)

const testID = "k3j5h2"

func stationSettings() models.PointSettings {
	return models.PointSettings{Type: "station", Name: "0"}
}

// mockSegments is a closed loop with handles on both sides of every vertex.
func mockSegments() []models.Segment {
	return []models.Segment{
		models.Smooth(curve.Pt(-580, -92), curve.Vec(2, 5), curve.Vec(-2, -5)),
		models.Smooth(curve.Pt(-566, -125), curve.Vec(-14, 3), curve.Vec(14, -3)),
		models.Smooth(curve.Pt(-524, -126), curve.Vec(-4, -7), curve.Vec(4, 7)),
		models.Smooth(curve.Pt(-524, -90), curve.Vec(1, -4), curve.Vec(-1, 4)),
	}
}

var mockLoopLines = []string{
	"\t\t-525 86 -578 87 -580 92",
	"\t\t-582 97 -580 122 -566 125",
	"\t\t-552 128 -528 133 -524 126",
	"\t\t-520 119 -523 94 -524 90",
	"\t\t-525 86 -578 87 -580 92",
}

func singleScrap(children ...models.Node) models.Project {
	return models.Project{Nodes: []models.Node{
		models.Layer{Name: "scrap1", Children: children},
	}}
}

func closedPath(settings models.PathSettings) models.PathFeature {
	return models.PathFeature{Segments: mockSegments(), Closed: true, Settings: settings}
}

func wrap(body ...string) []string {
	out := []string{"encoding utf-8", "scrap scrap1 "}
	out = append(out, body...)
	return append(out, "endscrap")
}

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func runExport(t *testing.T, p models.Project) []string {
	t.Helper()
	lines, err := NewExporter(StaticID(testID)).ProcessProject(p)
	require.NoError(t, err)
	return lines
}

func TestProcessProject_StationSkipsCatalog(t *testing.T) {
	p := models.Project{Nodes: []models.Node{
		models.Catalog{Name: "dictionary"},
		models.Layer{
			Name:     "scrap1",
			Children: []models.Node{models.NewPointFeature(10, -20, stationSettings())},
		},
	}}

	want := []string{
		"encoding utf-8",
		"scrap scrap1 ",
		"\tpoint 10 20 station -name 0",
		"endscrap",
	}
	if diff := cmp.Diff(want, runExport(t, p)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessProject_AllScrapSettings(t *testing.T) {
	settings := models.ScrapSettings{
		Scale:        "0 0 39.3701 0 0 0 1 0 m",
		Projection:   "elevation 100",
		Author:       `2021.08.01 "Author Name"`,
		Copyright:    `2021.08.01 "Author Name"`,
		StationNames: "prefix1 suffix1",
	}
	settings.Map.Set("walls", "on")

	p := models.Project{Nodes: []models.Node{
		models.Catalog{},
		models.Layer{
			Name:     "scrap1",
			Settings: settings,
			Children: []models.Node{models.NewPointFeature(10, -20, stationSettings())},
		},
	}}

	want := []string{
		"encoding utf-8",
		`scrap scrap1 -scale [0 0 39.3701 0 0 0 1 0 m] -projection [elevation 100] -author 2021.08.01 "Author Name" -copyright 2021.08.01 "Author Name" -station-names prefix1 suffix1 -walls on`,
		"\tpoint 10 20 station -name 0",
		"endscrap",
	}
	if diff := cmp.Diff(want, runExport(t, p)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessProject_ClosedLine(t *testing.T) {
	p := singleScrap(closedPath(models.LineSettings{Type: "wall"}))

	want := wrap(concat([]string{"\tline wall -close on"}, mockLoopLines, []string{"\tendline"})...)
	if diff := cmp.Diff(want, runExport(t, p)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessProject_CornersAndCurves(t *testing.T) {
	p := singleScrap(models.PathFeature{
		Segments: []models.Segment{
			models.Corner(-130.87, -18.95),
			models.Corner(-43.84, -18.53),
			models.Smooth(curve.Pt(-24.76, -91.72), curve.Vec(-82.42, 0.21), curve.Vec(82.42, -0.21)),
			models.Corner(-7.14, -18.74),
			models.Corner(43.82, -17.48),
		},
		Settings: models.LineSettings{Type: "wall"},
	})

	want := wrap(
		"\tline wall",
		"\t\t-130.87 18.95",
		"\t\t-43.84 18.53",
		"\t\t-43.84 18.53 -107.18 91.51 -24.76 91.72",
		"\t\t57.66 91.93 -7.14 18.74 -7.14 18.74",
		"\t\t43.82 17.48",
		"\tendline",
	)
	if diff := cmp.Diff(want, runExport(t, p)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessProject_InvisibleArea(t *testing.T) {
	p := singleScrap(closedPath(models.AreaSettings{
		Type:         "water",
		Invisible:    true,
		LineSettings: models.LineSettings{Type: "border", ID: "border1"},
	}))

	want := wrap(concat(
		[]string{"\tline border -close on -id border1"},
		mockLoopLines,
		[]string{"\tendline", "\tarea water -visibility off", "\t\tborder1", "\tendarea"},
	)...)

	var calls int
	e := NewExporter(IDFunc(func() string { calls++; return "unused" }))
	got, err := e.ProcessProject(p)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	assert.Zero(t, calls, "id generator called for an area with an explicit id")
}

func TestProcessProject_AreaWithGeneratedID(t *testing.T) {
	p := singleScrap(closedPath(models.AreaSettings{
		Type:         "water",
		LineSettings: models.LineSettings{Type: "border"},
	}))

	want := wrap(concat(
		[]string{"\tline border -close on -id " + testID},
		mockLoopLines,
		[]string{"\tendline", "\tarea water", "\t\t" + testID, "\tendarea"},
	)...)

	lines, stats, err := NewExporter(StaticID(testID)).Export(p)
	require.NoError(t, err)
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, stats.GeneratedIDs)
	assert.Equal(t, 1, stats.Areas)
	assert.Equal(t, 1, stats.Lines)
}

func TestProcessProject_GeneratedIDsDifferPerRun(t *testing.T) {
	p := singleScrap(closedPath(models.AreaSettings{
		Type:         "water",
		LineSettings: models.LineSettings{Type: "border"},
	}))

	first, err := ProcessProject(p)
	require.NoError(t, err)
	second, err := ProcessProject(p)
	require.NoError(t, err)

	// header and member line carry the id
	idOf := func(lines []string) (string, string) {
		return strings.TrimPrefix(lines[2], "\tline border -close on -id "), strings.TrimPrefix(lines[10], "\t\t")
	}
	h1, m1 := idOf(first)
	h2, m2 := idOf(second)
	require.Equal(t, h1, m1, "border id and area member differ")
	require.Equal(t, h2, m2, "border id and area member differ")
	assert.NotEqual(t, h1, h2, "expected a fresh id per run")

	strip := func(lines []string, id string) string {
		return strings.ReplaceAll(strings.Join(lines, "\n"), id, "<id>")
	}
	if diff := cmp.Diff(strip(first, h1), strip(second, h2)); diff != "" {
		t.Errorf("runs differ beyond the id (-first +second):\n%s", diff)
	}
	assert.Empty(t, p.Nodes[0].(models.Layer).Children[0].(models.PathFeature).Settings.(models.AreaSettings).LineSettings.ID,
		"generated id written back into the tree")
}

func TestProcessProject_LineWithSize(t *testing.T) {
	p := singleScrap(closedPath(models.LineSettings{Type: "slope", Size: 2}))

	want := wrap(concat(
		[]string{"\tline slope -close on"},
		mockLoopLines,
		[]string{"\t\tsize 2", "\tendline"},
	)...)
	if diff := cmp.Diff(want, runExport(t, p)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessProject_LineWithSubtypes(t *testing.T) {
	p := singleScrap(closedPath(models.LineSettings{
		Type:     "slope",
		Subtypes: map[int]string{0: "underlying", 2: "bedrock"},
	}))

	want := wrap(
		"\tline slope -close on",
		mockLoopLines[0],
		"\t\tsubtype underlying",
		mockLoopLines[1],
		mockLoopLines[2],
		"\t\tsubtype bedrock",
		mockLoopLines[3],
		mockLoopLines[4],
		"\tendline",
	)
	if diff := cmp.Diff(want, runExport(t, p)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessProject_LineWithSegmentSettings(t *testing.T) {
	tests := []struct {
		name     string
		settings map[int]string
		after0   []string
		after2   []string
	}{
		{
			name:     "single",
			settings: map[int]string{0: "smooth off", 2: "smooth on"},
			after0:   []string{"\t\tsmooth off"},
			after2:   []string{"\t\tsmooth on"},
		},
		{
			name:     "split on semicolon, literal newline kept",
			settings: map[int]string{0: "setting1;setting2", 2: "setting3\nsetting4"},
			after0:   []string{"\t\tsetting1", "\t\tsetting2"},
			after2:   []string{"\t\tsetting3\nsetting4"},
		},
		{
			name:     "escaped newline splits, empty pieces dropped",
			settings: map[int]string{0: `smooth off\naltitude 10;;`, 2: ";orientation 45"},
			after0:   []string{"\t\tsmooth off", "\t\taltitude 10"},
			after2:   []string{"\t\torientation 45"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := singleScrap(closedPath(models.LineSettings{Type: "slope", SegmentSettings: tt.settings}))

			want := wrap(concat(
				[]string{"\tline slope -close on", mockLoopLines[0]},
				tt.after0,
				mockLoopLines[1:3],
				tt.after2,
				mockLoopLines[3:],
				[]string{"\tendline"},
			)...)
			if diff := cmp.Diff(want, runExport(t, p)); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProcessProject_SubtypeBeforeSegmentSettings(t *testing.T) {
	p := singleScrap(models.PathFeature{
		Segments: []models.Segment{models.Corner(0, 0), models.Corner(10, 0)},
		Settings: models.LineSettings{
			Type:            "pit",
			Subtypes:        map[int]string{1: "blocks"},
			SegmentSettings: map[int]string{1: "l-size 5"},
		},
	})

	want := wrap(
		"\tline pit",
		"\t\t0 0",
		"\t\t10 0",
		"\t\tsubtype blocks",
		"\t\tl-size 5",
		"\tendline",
	)
	if diff := cmp.Diff(want, runExport(t, p)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessProject_LayersAndChildrenInOrder(t *testing.T) {
	p := models.Project{Nodes: []models.Node{
		models.Layer{Name: "b", Children: []models.Node{
			models.NewPointFeature(1, 1, models.PointSettings{Type: "station", Name: "2"}),
			models.PathFeature{
				Segments: []models.Segment{models.Corner(0, 0), models.Corner(5, 5)},
				Settings: models.LineSettings{Type: "wall"},
			},
			models.NewPointFeature(2, 2, models.PointSettings{Type: "blocks"}),
		}},
		models.PointFeature{Settings: models.PointSettings{Type: "ignored"}},
		models.Layer{Name: "a"},
	}}

	want := []string{
		"encoding utf-8",
		"scrap b ",
		"\tpoint 1 -1 station -name 2",
		"\tline wall",
		"\t\t0 0",
		"\t\t5 -5",
		"\tendline",
		"\tpoint 2 -2 blocks",
		"endscrap",
		"scrap a ",
		"endscrap",
	}
	if diff := cmp.Diff(want, runExport(t, p)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessProject_EmptyProject(t *testing.T) {
	assert.Equal(t, []string{"encoding utf-8"}, runExport(t, models.Project{}))
}

func TestProcessProject_InvalidTree(t *testing.T) {
	line := func(segs ...models.Segment) models.PathFeature {
		return models.PathFeature{Segments: segs, Settings: models.LineSettings{Type: "wall"}}
	}

	tests := []struct {
		name     string
		project  models.Project
		wantPath string
	}{
		{"nil top-level node", models.Project{Nodes: []models.Node{nil}}, "nodes[0]"},
		{"unnamed layer", models.Project{Nodes: []models.Node{models.Layer{}}}, "nodes[0]"},
		{"nested layer", singleScrap(models.Layer{Name: "inner"}), "nodes[0].children[0]"},
		{"catalog child", singleScrap(models.Catalog{}), "nodes[0].children[0]"},
		{"pointer node", singleScrap(&models.PointFeature{}), "nodes[0].children[0]"},
		{"point without type", singleScrap(models.NewPointFeature(0, 0, models.PointSettings{})), "nodes[0].children[0]"},
		{"path without settings", singleScrap(models.PathFeature{Segments: []models.Segment{models.Corner(0, 0)}}), "nodes[0].children[0]"},
		{"path without segments", singleScrap(line()), "nodes[0].children[0]"},
		{"line without type", singleScrap(models.PathFeature{
			Segments: []models.Segment{models.Corner(0, 0)},
			Settings: models.LineSettings{},
		}), "nodes[0].children[0]"},
		{"area without type", singleScrap(models.PathFeature{
			Segments: []models.Segment{models.Corner(0, 0)},
			Settings: models.AreaSettings{LineSettings: models.LineSettings{Type: "border"}},
		}), "nodes[0].children[0]"},
		{"subtype out of range", singleScrap(models.PathFeature{
			Segments: []models.Segment{models.Corner(0, 0), models.Corner(1, 1)},
			Settings: models.LineSettings{Type: "wall", Subtypes: map[int]string{2: "x"}},
		}), "nodes[0].children[0]"},
		{"negative segment setting", singleScrap(models.PathFeature{
			Segments: []models.Segment{models.Corner(0, 0)},
			Settings: models.LineSettings{Type: "wall", SegmentSettings: map[int]string{-1: "x"}},
		}), "nodes[0].children[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := NewExporter(StaticID(testID)).ProcessProject(tt.project)
			require.Error(t, err)
			assert.Nil(t, lines, "no output on error")
			require.ErrorIs(t, err, ErrInvalidTree)
			var treeErr *InvalidTreeError
			require.True(t, errors.As(err, &treeErr), "got %T", err)
			assert.Equal(t, tt.wantPath, treeErr.Path)
		})
	}
}

func TestRender(t *testing.T) {
	assert.Empty(t, Render(nil))
	assert.Equal(t, "encoding utf-8\nscrap s \nendscrap\n", Render([]string{"encoding utf-8", "scrap s ", "endscrap"}))
}
