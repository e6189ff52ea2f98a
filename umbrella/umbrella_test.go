package umbrella

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSamplingData(Te *testing.T) {
	usTrajs := [][]float64{{0.1, 0.2}, {1.0, 1.1}, {0.1, 0.15}}
	centers := []float64{0.0, 1.0, 0.0}
	fcs := []float64{10.0}
	mdTrajs := [][]float64{{0.5, 0.6, 0.7}}
	ttrajs, btrajs, p, err := SamplingData(usTrajs, centers, fcs, mdTrajs, 0)
	if err != nil {
		Te.Fatal(err)
	}
	//umbrellas 0 and 2 share center and force constant and must fold into
	//one thermodynamic state; MD gets one unbiased state
	if len(p.Centers) != 3 {
		Te.Fatalf("expected 3 thermodynamic states, got %d", len(p.Centers))
	}
	if p.ForceConstants[2] != 0 {
		Te.Error("the MD state must be unbiased")
	}
	if ttrajs[0][0] != 0 || ttrajs[1][0] != 1 || ttrajs[2][0] != 0 || ttrajs[3][0] != 2 {
		Te.Errorf("state labels wrong: %v", [][]int{ttrajs[0], ttrajs[1], ttrajs[2], ttrajs[3]})
	}
	//harmonic bias of frame 0 of trajectory 0 towards state 1:
	//0.5*10*(0.1-1.0)^2 = 4.05
	if b := btrajs[0].At(0, 1); math.Abs(b-4.05) > 1e-12 {
		Te.Errorf("bias = %v, want 4.05", b)
	}
	//zero towards its own center coordinate at the center
	if b := btrajs[0].At(0, 2); b != 0 {
		Te.Errorf("unbiased state bias = %v", b)
	}
}

func TestSamplingDataReducesBykT(Te *testing.T) {
	usTrajs := [][]float64{{1.0}}
	_, btrajs, _, err := SamplingData(usTrajs, []float64{0}, []float64{10}, nil, 2.0)
	if err != nil {
		Te.Fatal(err)
	}
	//0.5*(10/2)*(1-0)^2 = 2.5
	if b := btrajs[0].At(0, 0); math.Abs(b-2.5) > 1e-12 {
		Te.Errorf("reduced bias = %v, want 2.5", b)
	}
}

func TestMultitemperatureBias(Te *testing.T) {
	utrajs := [][]float64{{2.0, 4.0}}
	ttrajs := [][]int{{0, 1}}
	kTs := []float64{1.0, 2.0}
	btrajs, err := MultitemperatureBias(utrajs, ttrajs, kTs)
	if err != nil {
		Te.Fatal(err)
	}
	//towards the reference temperature the bias vanishes
	if b := btrajs[0].At(0, 0); b != 0 {
		Te.Errorf("reference bias = %v", b)
	}
	//b_1(x) = U*(1/2 - 1) = -U/2
	if b := btrajs[0].At(1, 1); math.Abs(b-(-2.0)) > 1e-12 {
		Te.Errorf("bias = %v, want -2", b)
	}
}

func TestAveragedBiasMatrix(Te *testing.T) {
	//constant per-frame bias within a discrete state averages to itself
	btrajs := []*mat.Dense{mat.NewDense(4, 2, []float64{
		1, 3,
		1, 3,
		2, 5,
		2, 5,
	})}
	dtrajs := [][]int{{0, 0, 1, 1}}
	bias, err := AveragedBiasMatrix(btrajs, dtrajs)
	if err != nil {
		Te.Fatal(err)
	}
	K, n := bias.Dims()
	if K != 2 || n != 2 {
		Te.Fatalf("bias dims %dx%d", K, n)
	}
	want := [][]float64{{1, 2}, {3, 5}}
	for t := 0; t < K; t++ {
		for i := 0; i < n; i++ {
			if math.Abs(bias.At(t, i)-want[t][i]) > 1e-12 {
				Te.Errorf("bias[%d,%d] = %v, want %v", t, i, bias.At(t, i), want[t][i])
			}
		}
	}
}

func TestAveragedBiasMatrixExponential(Te *testing.T) {
	//two frames in the same state with bias 0 and 2: the exponential
	//average is -log((1+e^-2)/2), below the arithmetic mean of 1
	btrajs := []*mat.Dense{mat.NewDense(2, 1, []float64{0, 2})}
	dtrajs := [][]int{{0, 0}}
	bias, err := AveragedBiasMatrix(btrajs, dtrajs)
	if err != nil {
		Te.Fatal(err)
	}
	want := -math.Log((1 + math.Exp(-2)) / 2)
	if got := bias.At(0, 0); math.Abs(got-want) > 1e-12 {
		Te.Errorf("exponential average = %v, want %v", got, want)
	}
}

//End-to-end: two umbrellas on a two-bin coordinate, estimated with WHAM,
//must produce a normalized stationary distribution.
func TestEstimateWHAM(Te *testing.T) {
	usTrajs := [][]float64{
		{0.1, 0.2, 0.1, 0.8, 0.2, 0.1, 0.9, 0.2},
		{0.9, 0.8, 0.2, 0.9, 0.8, 0.9, 0.1, 0.8},
	}
	usDtrajs := [][]int{
		{0, 0, 0, 1, 0, 0, 1, 0},
		{1, 1, 0, 1, 1, 1, 0, 1},
	}
	centers := []float64{0.0, 1.0}
	fcs := []float64{2.0}
	m, p, err := Estimate(usTrajs, usDtrajs, centers, fcs, nil, nil, 0, "wham", 1, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if len(p.Centers) != 2 {
		Te.Errorf("expected 2 states, got %d", len(p.Centers))
	}
	sum := 0.0
	for _, v := range m.Pi() {
		if v < 0 {
			Te.Errorf("negative probability %v", v)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-10 {
		Te.Errorf("pi sums to %v", sum)
	}
}

func TestEstimateUnsupported(Te *testing.T) {
	_, _, err := Estimate([][]float64{{0}}, [][]int{{0}}, []float64{0}, []float64{1},
		nil, nil, 0, "tram", 1, nil)
	if err == nil {
		Te.Error("unsupported estimator must fail")
	}
}
