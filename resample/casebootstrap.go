package resample

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/sanspareilsmyn/simstat/moments"
	"github.com/sanspareilsmyn/simstat/rng"
)

// CaseEstimator computes a named vector of estimates from a multiset of case
// identifiers. A nil or wrongly sized result marks the draw as unusable.
type CaseEstimator interface {
	Names() []string
	Estimate(cases []int) []float64
}

// CaseBootstrapSampler resamples case identifiers with replacement, so the
// estimator may depend on whole records rather than single values.
type CaseBootstrapSampler struct {
	name   string
	cases  []int
	est    CaseEstimator
	stream rng.Stream
	logger *zap.Logger

	saveSamples bool
	samples     [][]int
	across      *moments.MVStatistic
	last        []Estimate
	skipped     int
}

// NewCaseBootstrapSampler returns a sampler over cases, which must hold at
// least two identifiers.
func NewCaseBootstrapSampler(cases []int, est CaseEstimator, opts ...Option) (*CaseBootstrapSampler, error) {
	if len(cases) < 2 {
		return nil, fmt.Errorf("%w: have %d cases", ErrInsufficientData, len(cases))
	}
	if est == nil {
		return nil, ErrNilEstimator
	}
	if len(est.Names()) == 0 {
		return nil, ErrNoEstimatorNames
	}
	cfg := newConfig(opts)
	return &CaseBootstrapSampler{
		name:        cfg.resolveName("CaseBootstrap"),
		cases:       slices.Clone(cases),
		est:         est,
		stream:      cfg.resolveStream(),
		logger:      cfg.logger,
		saveSamples: cfg.saveSamples,
	}, nil
}

func (s *CaseBootstrapSampler) Name() string { return s.name }

// Cases returns a copy of the original case identifiers.
func (s *CaseBootstrapSampler) Cases() []int { return slices.Clone(s.cases) }

// SampleSize returns the size of the case population.
func (s *CaseBootstrapSampler) SampleSize() int { return len(s.cases) }

// Sample draws one bootstrap multiset of case identifiers.
func (s *CaseBootstrapSampler) Sample() []int {
	out := make([]int, len(s.cases))
	hi := len(s.cases) - 1
	for i := range out {
		out[i] = s.cases[s.stream.RandInt(0, hi)]
	}
	return out
}

// OriginalEstimates applies the estimator to the original cases.
func (s *CaseBootstrapSampler) OriginalEstimates() []float64 {
	return s.est.Estimate(slices.Clone(s.cases))
}

// BootstrapEstimates draws numSamples case resamples and returns one Estimate
// per estimator dimension. Draws whose estimate has the wrong dimension are
// skipped and counted by Skipped.
func (s *CaseBootstrapSampler) BootstrapEstimates(numSamples int) ([]Estimate, error) {
	if numSamples <= 1 {
		return nil, fmt.Errorf("%w: %d", ErrTooFewBootstrapSamples, numSamples)
	}
	names := s.est.Names()
	original := s.OriginalEstimates()
	if len(original) != len(names) {
		return nil, fmt.Errorf("%w: original cases gave %d values for %d names", ErrDimensionMismatch, len(original), len(names))
	}
	across, err := moments.NewMVStatistic(s.name+":AcrossBootstrap", names)
	if err != nil {
		return nil, err
	}
	s.samples = nil
	s.skipped = 0

	values := make([][]float64, len(names))
	for i := 0; i < numSamples; i++ {
		sample := s.Sample()
		got := s.est.Estimate(sample)
		if err := across.Collect(got); err != nil {
			s.skipped++
			s.logger.Debug("Skipping case resample with unusable estimate",
				zap.String("sampler", s.name),
				zap.Int("sample", i+1),
				zap.Error(err),
			)
			continue
		}
		for k, v := range got {
			values[k] = append(values[k], v)
		}
		if s.saveSamples {
			s.samples = append(s.samples, sample)
		}
	}
	if s.skipped > 0 {
		s.logger.Warn("Case resamples skipped",
			zap.String("sampler", s.name),
			zap.Int("skipped", s.skipped),
			zap.Int("requested", numSamples),
		)
	}

	s.across = across
	s.last = make([]Estimate, len(names))
	for k, n := range names {
		s.last[k] = Estimate{
			Name:             n,
			SampleSize:       len(s.cases),
			OriginalEstimate: original[k],
			Estimates:        values[k],
		}
	}
	return s.LastEstimates(), nil
}

// LastEstimates returns the estimates of the most recent run.
func (s *CaseBootstrapSampler) LastEstimates() []Estimate {
	out := make([]Estimate, len(s.last))
	for i, e := range s.last {
		e.Estimates = slices.Clone(e.Estimates)
		out[i] = e
	}
	return out
}

// AcrossBootstrapStatistics summarizes the accepted estimates of the last run.
func (s *CaseBootstrapSampler) AcrossBootstrapStatistics() *moments.MVStatistic {
	if s.across == nil {
		return nil
	}
	return s.across.Copy()
}

func (s *CaseBootstrapSampler) Skipped() int { return s.skipped }

func (s *CaseBootstrapSampler) SaveSamples() bool { return s.saveSamples }

func (s *CaseBootstrapSampler) SetSaveSamples(save bool) { s.saveSamples = save }

func (s *CaseBootstrapSampler) NumSavedSamples() int { return len(s.samples) }

// BootstrapSample returns a copy of saved case resample i (0-based).
func (s *CaseBootstrapSampler) BootstrapSample(i int) ([]int, error) {
	if i < 0 || i >= len(s.samples) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrSampleIndexOutOfRange, i, len(s.samples))
	}
	return slices.Clone(s.samples[i]), nil
}

func (s *CaseBootstrapSampler) Stream() rng.Stream { return s.stream }

func (s *CaseBootstrapSampler) SetStream(st rng.Stream) error {
	if st == nil {
		return ErrNilStream
	}
	s.stream = st
	return nil
}

func (s *CaseBootstrapSampler) ResetStartStream() { s.stream.ResetStartStream() }

func (s *CaseBootstrapSampler) ResetStartSubstream() { s.stream.ResetStartSubstream() }

func (s *CaseBootstrapSampler) AdvanceToNextSubstream() { s.stream.AdvanceToNextSubstream() }

func (s *CaseBootstrapSampler) SetAntithetic(flag bool) { s.stream.SetAntithetic(flag) }

func (s *CaseBootstrapSampler) Antithetic() bool { return s.stream.Antithetic() }

// MatrixEstimator computes a named vector of estimates from a data matrix
// whose rows are cases.
type MatrixEstimator interface {
	Names() []string
	Estimate(m mat.Matrix) []float64
}

// MatrixBootEstimator is a CaseEstimator whose cases are the rows of a matrix.
// Estimate rebuilds the matrix from the requested rows, repeats included.
type MatrixBootEstimator struct {
	data *mat.Dense
	est  MatrixEstimator
}

// NewMatrixBootEstimator copies data, which must have at least two rows.
func NewMatrixBootEstimator(data mat.Matrix, est MatrixEstimator) (*MatrixBootEstimator, error) {
	if est == nil {
		return nil, ErrNilEstimator
	}
	if r, _ := data.Dims(); r < 2 {
		return nil, fmt.Errorf("%w: have %d rows", ErrInsufficientData, r)
	}
	return &MatrixBootEstimator{data: mat.DenseCopyOf(data), est: est}, nil
}

func (m *MatrixBootEstimator) Names() []string { return m.est.Names() }

// Cases returns the row indices 0..r-1.
func (m *MatrixBootEstimator) Cases() []int {
	r, _ := m.data.Dims()
	out := make([]int, r)
	for i := range out {
		out[i] = i
	}
	return out
}

// Rows returns the matrix made of the given rows, or nil if a row is out of range.
func (m *MatrixBootEstimator) Rows(cases []int) *mat.Dense {
	r, c := m.data.Dims()
	if len(cases) == 0 {
		return nil
	}
	sub := mat.NewDense(len(cases), c, nil)
	for i, id := range cases {
		if id < 0 || id >= r {
			return nil
		}
		sub.SetRow(i, m.data.RawRowView(id))
	}
	return sub
}

func (m *MatrixBootEstimator) Estimate(cases []int) []float64 {
	sub := m.Rows(cases)
	if sub == nil {
		return nil
	}
	return m.est.Estimate(sub)
}

// OLSEstimator regresses one column of a matrix on all the others by least
// squares. Its estimates are the coefficients: b0 for the intercept, then
// b1, b2, ... for the predictor columns in column order.
type OLSEstimator struct {
	numColumns int
	response   int
	intercept  bool
	predictors []int
}

// NewOLSEstimator returns an estimator for matrices with numColumns columns.
func NewOLSEstimator(numColumns, response int, intercept bool) (*OLSEstimator, error) {
	if response < 0 || response >= numColumns {
		return nil, fmt.Errorf("%w: response %d of %d", ErrInvalidColumn, response, numColumns)
	}
	if numColumns < 2 && !intercept {
		return nil, fmt.Errorf("%w: no predictor columns", ErrInvalidColumn)
	}
	o := &OLSEstimator{numColumns: numColumns, response: response, intercept: intercept}
	for j := 0; j < numColumns; j++ {
		if j != response {
			o.predictors = append(o.predictors, j)
		}
	}
	return o, nil
}

func (o *OLSEstimator) Names() []string {
	var names []string
	if o.intercept {
		names = append(names, "b0")
	}
	for k := range o.predictors {
		names = append(names, fmt.Sprintf("b%d", k+1))
	}
	return names
}

// Estimate returns the coefficients, or nil when the matrix has the wrong
// shape or the design is singular.
func (o *OLSEstimator) Estimate(m mat.Matrix) []float64 {
	r, c := m.Dims()
	if c != o.numColumns {
		return nil
	}
	p := len(o.predictors)
	if o.intercept {
		p++
	}
	if r < p {
		return nil
	}
	x := mat.NewDense(r, p, nil)
	y := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		k := 0
		if o.intercept {
			x.Set(i, 0, 1)
			k = 1
		}
		for _, j := range o.predictors {
			x.Set(i, k, m.At(i, j))
			k++
		}
		y.SetVec(i, m.At(i, o.response))
	}
	var beta mat.VecDense
	if err := beta.SolveVec(x, y); err != nil {
		return nil
	}
	return mat.Col(nil, 0, &beta)
}
