package graph

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"github.com/matzehuels/growtree/pkg/config"
	"github.com/matzehuels/growtree/pkg/errors"
	"github.com/matzehuels/growtree/pkg/layout"
)

const spellsJSON = `{
  "seed": 42,
  "categories": [
    {
      "name": "fire",
      "shape": "spiky",
      "behavior": "burst",
      "nodes": [
        {"id": "spark", "root": true, "children": ["flame", "ember"]},
        {"id": "flame", "tier": 1},
        {"id": "ember", "tier": 1, "prerequisites": ["spark"]},
        {"id": "ash", "tier": 1, "prerequisites": ["spark"]},
        {"id": "inferno", "tier": 2, "prerequisites": ["flame", "ember"]}
      ]
    },
    {
      "name": "frost",
      "sector": {"start": 180, "end": 270},
      "nodes": [{"id": "chill", "root": true}]
    }
  ]
}`

const spellsYAML = `
seed: 42
categories:
  - name: fire
    shape: spiky
    behavior: burst
    nodes:
      - {id: spark, root: true, children: [flame, ember]}
      - {id: flame, tier: 1}
      - {id: ember, tier: 1, prerequisites: [spark]}
      - {id: ash, tier: 1, prerequisites: [spark]}
      - {id: inferno, tier: 2, prerequisites: [flame, ember]}
  - name: frost
    sector: {start: 180, end: 270}
    nodes:
      - {id: chill, root: true}
`

func TestUnmarshalInputFormats(t *testing.T) {
	fromJSON, err := UnmarshalInput([]byte(spellsJSON), "")
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	fromYAML, err := UnmarshalInput([]byte(spellsYAML), "")
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !reflect.DeepEqual(fromJSON, fromYAML) {
		t.Errorf("json and yaml documents decode differently:\n%+v\n%+v", fromJSON, fromYAML)
	}
	if fromJSON.Seed == nil || *fromJSON.Seed != 42 {
		t.Errorf("seed = %v, want 42", fromJSON.Seed)
	}
	if got := fromJSON.NodeCount(); got != 6 {
		t.Errorf("NodeCount() = %d, want 6", got)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		data string
		want string
	}{
		{`{"categories": []}`, FormatJSON},
		{"  \n{}", FormatJSON},
		{"categories: []", FormatYAML},
		{"", FormatYAML},
	}
	for _, tt := range tests {
		if got := DetectFormat([]byte(tt.data)); got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tt.data, got, tt.want)
		}
	}
	if FormatFor("a/b.YML") != FormatYAML || FormatFor("spells.json") != FormatJSON {
		t.Error("FormatFor picked the wrong format")
	}
}

func TestUnmarshalInputErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
		code   errors.Code
	}{
		{"malformed json", `{"categories": [`, FormatJSON, errors.ErrCodeInvalidFormat},
		{"unknown json field", `{"categorys": []}`, FormatJSON, errors.ErrCodeInvalidFormat},
		{"unknown yaml field", "categorys: []", FormatYAML, errors.ErrCodeInvalidFormat},
		{"wrong yaml type", "categories: 7", FormatYAML, errors.ErrCodeInvalidFormat},
		{"unsupported format", "<xml/>", "xml", errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalInput([]byte(tt.data), tt.format)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() Input {
		in, err := UnmarshalInput([]byte(spellsJSON), FormatJSON)
		if err != nil {
			t.Fatal(err)
		}
		return in
	}

	tests := []struct {
		name   string
		mutate func(*Input)
		code   errors.Code
	}{
		{"valid", func(*Input) {}, ""},
		{"empty category name", func(in *Input) { in.Categories[0].Name = "" }, errors.ErrCodeInvalidInput},
		{"duplicate category", func(in *Input) { in.Categories[1].Name = "fire" }, errors.ErrCodeInvalidInput},
		{"bad shape key", func(in *Input) { in.Categories[0].Shape = "Ray Lock" }, errors.ErrCodeInvalidShape},
		{"bad behavior key", func(in *Input) { in.Categories[0].Behavior = "up!" }, errors.ErrCodeInvalidBehavior},
		{"sector too wide", func(in *Input) { in.Categories[1].Sector.End = 900 }, errors.ErrCodeInvalidSector},
		{"duplicate node", func(in *Input) { in.Categories[0].Nodes[1].ID = "spark" }, errors.ErrCodeInvalidInput},
		{"negative tier", func(in *Input) { in.Categories[0].Nodes[1].Tier = -1 }, errors.ErrCodeInvalidInput},
		{"unknown child", func(in *Input) {
			in.Categories[0].Nodes[1].Children = []string{"blizzard"}
		}, errors.ErrCodeInvalidInput},
		{"self reference", func(in *Input) {
			in.Categories[0].Nodes[1].Prerequisites = []string{"flame"}
		}, errors.ErrCodeInvalidInput},
		{"bad config", func(in *Input) { in.Config = &config.Layout{ArcSpacing: -5} }, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			err := in.Validate()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestToCategories(t *testing.T) {
	in, err := UnmarshalInput([]byte(spellsJSON), "")
	if err != nil {
		t.Fatal(err)
	}
	in.Categories[0].Nodes[0].Tier = 3 // roots are forced onto tier 0

	cats, err := ToCategories(in, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 2 {
		t.Fatalf("got %d categories", len(cats))
	}
	fire := cats[0].Graph
	if got, want := fire.Children("spark"), []string{"flame", "ember", "ash"}; !slices.Equal(got, want) {
		t.Errorf("Children(spark) = %v, want %v", got, want)
	}
	if got := fire.EdgeCount(); got != 5 {
		t.Errorf("EdgeCount() = %d, want 5", got)
	}
	if n, _ := fire.Node("spark"); n.Tier != 0 || !n.Root {
		t.Errorf("spark = %+v, want root on tier 0", n)
	}
	if cats[1].Sector.Start != 180 || cats[1].Sector.End != 270 {
		t.Errorf("frost sector = %v", cats[1].Sector)
	}
}

func TestToCategoriesAutoTier(t *testing.T) {
	in, err := UnmarshalInput([]byte(spellsYAML), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	for i := range in.Categories[0].Nodes {
		in.Categories[0].Nodes[i].Tier = 0
	}
	in.AutoTier = true

	cats, err := ToCategories(in, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"spark": 0, "flame": 1, "ember": 1, "ash": 1, "inferno": 2}
	for id, tier := range want {
		if n, _ := cats[0].Graph.Node(id); n.Tier != tier {
			t.Errorf("%s on tier %d, want %d", id, n.Tier, tier)
		}
	}
}

func TestFromCategoriesRoundTrip(t *testing.T) {
	in, err := UnmarshalInput([]byte(spellsJSON), "")
	if err != nil {
		t.Fatal(err)
	}
	cats, err := ToCategories(in, nil)
	if err != nil {
		t.Fatal(err)
	}
	again, err := ToCategories(FromCategories(cats), nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range cats {
		a, b := cats[i].Graph, again[i].Graph
		if !reflect.DeepEqual(a.Edges(), b.Edges()) {
			t.Errorf("%s: edges %v, want %v", cats[i].Name, b.Edges(), a.Edges())
		}
	}
}

func TestFromResult(t *testing.T) {
	in, err := UnmarshalInput([]byte(spellsJSON), "")
	if err != nil {
		t.Fatal(err)
	}
	cats, err := ToCategories(in, nil)
	if err != nil {
		t.Fatal(err)
	}
	e, err := layout.New(layout.Options{Seed: *in.Seed})
	if err != nil {
		t.Fatal(err)
	}
	res, err := e.Layout(context.Background(), cats)
	if err != nil {
		t.Fatal(err)
	}

	l := FromResult(res, cats, e.Config())
	var ids []string
	for _, n := range l.Nodes {
		ids = append(ids, n.Category+"/"+n.ID)
	}
	want := []string{"fire/spark", "fire/flame", "fire/ember", "fire/ash", "fire/inferno", "frost/chill"}
	if !slices.Equal(ids, want) {
		t.Errorf("node order = %v, want %v", ids, want)
	}
	if spark, ok := l.Node("fire", "spark"); !ok || !spark.Root || spark.Shape != "spiky" {
		t.Errorf("spark = %+v", spark)
	}
	if l.Categories[1].Nodes != 1 || l.Categories[1].Shape != "organic" {
		t.Errorf("frost stats = %+v", l.Categories[1])
	}

	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatal(err)
	}
	back, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(l, back) {
		t.Error("layout changed across a JSON round trip")
	}
}

func TestReadInputFile(t *testing.T) {
	dir := t.TempDir()

	if _, err := ReadInputFile(filepath.Join(dir, "missing.yaml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}

	path := filepath.Join(dir, "spells.yml")
	if err := os.WriteFile(path, []byte(spellsYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	in, err := ReadInputFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "copy.json")
	if err := WriteInputFile(in, out); err != nil {
		t.Fatal(err)
	}
	again, err := ReadInputFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(in, again) {
		t.Error("input changed when rewritten as JSON")
	}
}

func TestExampleInputs(t *testing.T) {
	tests := []struct {
		file       string
		categories int
		nodes      int
	}{
		{"elements.yaml", 4, 21},
		{"single.json", 1, 6},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			in, err := ReadInputFile(filepath.Join("..", "..", "examples", tt.file))
			if err != nil {
				t.Fatalf("ReadInputFile() error: %v", err)
			}
			if err := in.Validate(); err != nil {
				t.Fatalf("Validate() error: %v", err)
			}
			if len(in.Categories) != tt.categories {
				t.Errorf("categories = %d, want %d", len(in.Categories), tt.categories)
			}
			if got := in.NodeCount(); got != tt.nodes {
				t.Errorf("NodeCount() = %d, want %d", got, tt.nodes)
			}
		})
	}
}
