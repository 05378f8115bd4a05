package InputParameters

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ghodss/yaml"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/convexenv/envelope"
	"github.com/notargets/convexenv/model_problems"
	"github.com/notargets/convexenv/optimizer"
	"github.com/notargets/convexenv/types"
)

// Parameters obtained from the YAML problem file. ghodss/yaml decodes through
// encoding/json, so the json tags name the keys. Y is read from "Points" and
// the query y from "YPoint": a bare Y key is the YAML 1.1 boolean true.
type InputParameters struct {
	Title    string             `yaml:"Title"`
	Function string             `yaml:"Function"`
	Params   map[string]float64 `yaml:"Params"` // Function parameters by name
	W        [][2]float64       `yaml:"W"`      // Lower and upper bound per dimension
	Y        [][]float64        `yaml:"Points" json:"Points"`
	Query    Query              `yaml:"Query"`
	Grid     Grid               `yaml:"Grid"`
	Solver   Solver             `yaml:"Solver"`
}

type Query struct {
	W []float64 `yaml:"W"`
	Y []float64 `yaml:"YPoint" json:"YPoint"`
}

// Grid spans the first coordinate of w and y. Remaining coordinates are taken
// from Query.
type Grid struct {
	WMin   float64 `yaml:"WMin"`
	WMax   float64 `yaml:"WMax"`
	WSteps int     `yaml:"WSteps"`
	YMin   float64 `yaml:"YMin"`
	YMax   float64 `yaml:"YMax"`
	YSteps int     `yaml:"YSteps"`
}

type Solver struct {
	Method               string   `yaml:"Method"`
	Accuracy             float64  `yaml:"Accuracy"`
	MaxOuter             int      `yaml:"MaxOuter"`
	Workers              int      `yaml:"Workers"`
	Retries              int      `yaml:"Retries"`
	Strict               bool     `yaml:"Strict"`
	RejectSingular       bool     `yaml:"RejectSingular"`
	FeasibilityTolerance *float64 `yaml:"FeasibilityTolerance"` // Absent means the default, 0 is exact
	ResidualTolerance    *float64 `yaml:"ResidualTolerance"`    // Negative disables the check
}

// NewDefault returns the hinge example: f(w, y) = max(1 - w(2y - 1), 0) + |w|
// on W = [-3, 3], Y = {0, 1}, queried at w = 0.1, y = 0.5.
func NewDefault() *InputParameters {
	return &InputParameters{
		Title:    "Hinge loss with L1 penalty",
		Function: "hinge",
		Params:   map[string]float64{"x": 1},
		W:        [][2]float64{{-3, 3}},
		Y:        [][]float64{{0}, {1}},
		Query:    Query{W: []float64{0.1}, Y: []float64{0.5}},
		Grid: Grid{
			WMin: -2, WMax: 2, WSteps: 50,
			YMin: 0.001, YMax: 0.999, YSteps: 50,
		},
	}
}

func (ip *InputParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

// Read parses a problem file, filling what it leaves out from NewDefault.
func Read(fileName string) (ip *InputParameters, err error) {
	var data []byte
	if data, err = os.ReadFile(fileName); err != nil {
		return
	}
	ip = &InputParameters{}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", fileName, err)
	}
	if len(ip.Function) != 0 && (len(ip.W) == 0 || len(ip.Y) == 0) {
		return nil, fmt.Errorf("%s: Function %s needs both W and Points", fileName, ip.Function)
	}
	ip.fillDefaults()
	return
}

func (ip *InputParameters) fillDefaults() {
	def := NewDefault()
	if len(ip.Function) == 0 {
		ip.Function, ip.Params = def.Function, def.Params
		ip.W, ip.Y = def.W, def.Y
	}
	if ip.Grid.WSteps == 0 && ip.Grid.YSteps == 0 {
		ip.Grid = def.Grid
	}
}

func (ip *InputParameters) Print() {
	ip.Fprint(os.Stdout)
}

func (ip *InputParameters) Fprint(w io.Writer) {
	fmt.Fprintf(w, "\"%s\"\t\t= Title\n", ip.Title)
	fmt.Fprintf(w, "[%s]\t\t= Function\n", ip.Function)
	keys := make([]string, 0, len(ip.Params))
	for k := range ip.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(w, "Params[%s] = %v\n", key, ip.Params[key])
	}
	fmt.Fprintf(w, "%v\t= W\n", ip.W)
	fmt.Fprintf(w, "[%d points of dimension %d]\t= Points\n", len(ip.Y), types.PointSet(ip.Y).Dim())
	if len(ip.Solver.Method) != 0 {
		fmt.Fprintf(w, "[%s]\t\t= Method\n", ip.Solver.Method)
	}
	if ip.Solver.Workers > 1 {
		fmt.Fprintf(w, "[%d]\t\t\t= Workers\n", ip.Solver.Workers)
	}
}

func (ip *InputParameters) Box() types.Box {
	return types.NewBox(ip.W)
}

func (ip *InputParameters) Points() types.PointSet {
	return types.PointSet(ip.Y)
}

func (ip *InputParameters) Func() (envelope.Function, error) {
	return model_problems.Lookup(ip.Function, ip.Params)
}

func (ip *InputParameters) Settings() (s optimizer.Settings, err error) {
	if s.Method, err = optimizer.NewMethod(ip.Solver.Method); err != nil {
		return
	}
	s.Accuracy = ip.Solver.Accuracy
	s.MaxOuter = ip.Solver.MaxOuter
	return
}

// Options converts the Solver section to envelope options.
func (ip *InputParameters) Options() (opts []envelope.Option, err error) {
	var s optimizer.Settings
	if s, err = ip.Settings(); err != nil {
		return
	}
	sv := ip.Solver
	opts = []envelope.Option{
		envelope.WithMinimizer(optimizer.NewAugmentedLagrangian(s)),
		envelope.WithWorkers(sv.Workers),
		envelope.WithRetries(sv.Retries),
		envelope.WithStrictConvergence(sv.Strict),
		envelope.WithRejectSingular(sv.RejectSingular),
	}
	if sv.FeasibilityTolerance != nil {
		opts = append(opts, envelope.WithFeasibilityTolerance(*sv.FeasibilityTolerance))
	}
	if sv.ResidualTolerance != nil {
		opts = append(opts, envelope.WithResidualTolerance(*sv.ResidualTolerance))
	}
	return
}

// NewEnvelope builds the envelope described by the file, with extra options
// applied after those of the Solver section.
func (ip *InputParameters) NewEnvelope(extra ...envelope.Option) (env *envelope.Envelope, err error) {
	var (
		f    envelope.Function
		opts []envelope.Option
	)
	if f, err = ip.Func(); err != nil {
		return
	}
	if opts, err = ip.Options(); err != nil {
		return
	}
	return envelope.New(ip.Box(), ip.Points(), f, append(opts, extra...)...)
}

// GridQueries lays out the WSteps × YSteps query points, w outer and y inner.
func (ip *InputParameters) GridQueries() (queries []Query, err error) {
	g := ip.Grid
	if g.WSteps < 1 || g.YSteps < 1 {
		return nil, fmt.Errorf("grid needs at least one step in w and y, have %d and %d", g.WSteps, g.YSteps)
	}
	var (
		wDim, yDim = len(ip.W), types.PointSet(ip.Y).Dim()
		ws         = span(g.WMin, g.WMax, g.WSteps)
		ys         = span(g.YMin, g.YMax, g.YSteps)
	)
	if wDim == 0 || yDim == 0 {
		return nil, fmt.Errorf("grid needs non empty W and Points")
	}
	base := func(q []float64, dim int) []float64 {
		b := make([]float64, dim)
		copy(b, q)
		return b
	}
	queries = make([]Query, 0, len(ws)*len(ys))
	for _, wv := range ws {
		for _, yv := range ys {
			q := Query{W: base(ip.Query.W, wDim), Y: base(ip.Query.Y, yDim)}
			q.W[0], q.Y[0] = wv, yv
			queries = append(queries, q)
		}
	}
	return
}

func span(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}
