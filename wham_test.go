package thermo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

//repeat builds a trajectory with count[i] frames in state i, in order.
func repeat(counts ...int) []int {
	var traj []int
	for state, c := range counts {
		for f := 0; f < c; f++ {
			traj = append(traj, state)
		}
	}
	return traj
}

//constTraj returns length frames of the same state.
func constTraj(state, length int) []int {
	traj := make([]int, length)
	for f := range traj {
		traj[f] = state
	}
	return traj
}

//Two thermodynamic states, two configurational states, bias [[0,0],[0,2]],
//50/50 occupation everywhere. The WHAM fixed point is analytic here: the
//unbiased window says pi1/pi0 = 1, the biased window says pi1/pi0 = e^2,
//and with equal frame counts the self-consistent solution is the geometric
//mean, pi1/pi0 = e, with f[1]-f[0] = 1.
func TestWHAMTwoStateAnalytic(Te *testing.T) {
	bias := mat.NewDense(2, 2, []float64{0, 0, 0, 2})
	ttrajs := [][]int{constTraj(0, 100), constTraj(1, 100)}
	dtrajs := [][]int{repeat(50, 50), repeat(50, 50)}
	o := DefaultOptions()
	o.Maxerr(1e-12)
	m, err := WHAM(ttrajs, dtrajs, bias, o)
	require.NoError(Te, err)
	require.True(Te, m.Converged())
	pi := m.Pi()
	assert.InDelta(Te, 1.0, pi[0]+pi[1], 1e-12, "pi must be normalized")
	assert.InDelta(Te, math.E, pi[1]/pi[0], 1e-8)
	f := m.FreeEnergies()
	assert.Zero(Te, f[0])
	assert.InDelta(Te, 1.0, f[1], 1e-8)
}

//Occupation data consistent with a flat unbiased distribution: the biased
//window sees the Boltzmann-reweighted counts of its own bias. WHAM must
//recover pi close to [0.5, 0.5] at the reference state.
func TestWHAMRecoversFlatDistribution(Te *testing.T) {
	bias := mat.NewDense(2, 2, []float64{0, 0, 0, 2})
	//biased window: (1, e^-2)/norm of 100 frames is (88, 12)
	ttrajs := [][]int{constTraj(0, 100), constTraj(1, 100)}
	dtrajs := [][]int{repeat(50, 50), repeat(88, 12)}
	o := DefaultOptions()
	o.Maxerr(1e-10)
	m, err := WHAM(ttrajs, dtrajs, bias, o)
	require.NoError(Te, err)
	pi := m.Pi()
	assert.InDelta(Te, 0.5, pi[0], 0.01)
	assert.InDelta(Te, 0.5, pi[1], 0.01)
}

//Shifting one thermodynamic state's bias row by a constant must leave pi
//untouched and move only that state's free energy by the same constant.
func TestWHAMShiftInvariance(Te *testing.T) {
	ttrajs := [][]int{constTraj(0, 100), constTraj(1, 100)}
	dtrajs := [][]int{repeat(30, 70), repeat(60, 40)}
	bias := mat.NewDense(2, 2, []float64{0, 0, 1, 3})
	shifted := mat.NewDense(2, 2, []float64{0, 0, 1 + 5, 3 + 5})
	o := DefaultOptions()
	o.Maxerr(1e-12)
	a, err := WHAM(ttrajs, dtrajs, bias, o)
	require.NoError(Te, err)
	b, err := WHAM(ttrajs, dtrajs, shifted, o)
	require.NoError(Te, err)
	pa, pb := a.Pi(), b.Pi()
	for i := range pa {
		assert.InDelta(Te, pa[i], pb[i], 1e-10)
	}
	fa, fb := a.FreeEnergies(), b.FreeEnergies()
	assert.InDelta(Te, fa[1]+5, fb[1], 1e-10)
}

//States never sampled anywhere stay at pi = 0 without poisoning the rest.
func TestWHAMZeroCountState(Te *testing.T) {
	bias := mat.NewDense(1, 3, nil) //state 2 never visited
	m, err := WHAM([][]int{constTraj(0, 10)}, [][]int{repeat(5, 5)}, bias, nil)
	require.NoError(Te, err)
	pi := m.Pi()
	assert.Zero(Te, pi[2])
	assert.False(Te, m.Estimated(2))
	assert.True(Te, m.Estimated(0))
	assert.InDelta(Te, 1.0, pi[0]+pi[1]+pi[2], 1e-12)
	for _, v := range m.FreeEnergies() {
		assert.False(Te, math.IsNaN(v))
	}
}

//Exhausting the iteration cap is a soft failure: the model comes back
//finite, flagged unconverged, together with a NotConvergedError.
func TestWHAMMaxiterSoftFailure(Te *testing.T) {
	bias := mat.NewDense(2, 2, []float64{0, 0, 0, 2})
	ttrajs := [][]int{constTraj(0, 100), constTraj(1, 100)}
	dtrajs := [][]int{repeat(50, 50), repeat(50, 50)}
	o := DefaultOptions()
	o.Maxiter(1)
	o.Maxerr(1e-15)
	m, err := WHAM(ttrajs, dtrajs, bias, o)
	require.Error(Te, err)
	require.IsType(Te, NotConvergedError{}, err)
	require.NotNil(Te, m)
	assert.False(Te, m.Converged())
	assert.Equal(Te, 1, m.Iterations())
	for _, v := range m.Pi() {
		assert.False(Te, math.IsNaN(v) || math.IsInf(v, 0))
	}
	for _, v := range m.FreeEnergies() {
		assert.False(Te, math.IsNaN(v) || math.IsInf(v, 0))
	}
}

//The recorded error history must be non-increasing after the first few
//iterations on well-posed data.
func TestWHAMErrorHistoryMonotone(Te *testing.T) {
	bias := mat.NewDense(2, 2, []float64{0, 0, 0, 2})
	ttrajs := [][]int{constTraj(0, 100), constTraj(1, 100)}
	dtrajs := [][]int{repeat(50, 50), repeat(50, 50)}
	o := DefaultOptions()
	o.Maxerr(1e-12)
	o.ErrOut(1)
	o.LllOut(10)
	m, err := WHAM(ttrajs, dtrajs, bias, o)
	require.NoError(Te, err)
	hist := m.ErrorHistory()
	require.True(Te, len(hist) > 5)
	for k := 3; k < len(hist); k++ {
		assert.LessOrEqual(Te, hist[k], hist[k-1]+1e-15,
			"error history increased at iteration %d", k)
	}
	assert.NotEmpty(Te, m.LogLikelihoodHistory())
}

//The reweighted stationary distributions per thermodynamic state are
//normalized and follow pi[i]*exp(-b[t,i]).
func TestWHAMStationaryDistributionPerState(Te *testing.T) {
	bias := mat.NewDense(2, 2, []float64{0, 0, 0, 2})
	ttrajs := [][]int{constTraj(0, 100), constTraj(1, 100)}
	dtrajs := [][]int{repeat(50, 50), repeat(50, 50)}
	o := DefaultOptions()
	o.Maxerr(1e-12)
	m, err := WHAM(ttrajs, dtrajs, bias, o)
	require.NoError(Te, err)
	pi := m.Pi()
	for t := 0; t < 2; t++ {
		pt := m.StationaryDistribution(t)
		sum := pt[0] + pt[1]
		assert.InDelta(Te, 1.0, sum, 1e-12)
		want0 := pi[0] * math.Exp(-bias.At(t, 0))
		want1 := pi[1] * math.Exp(-bias.At(t, 1))
		assert.InDelta(Te, want0/(want0+want1), pt[0], 1e-12)
	}
}
