package thermo

import "testing"

func TestNormalizeTrajs(Te *testing.T) {
	ttrajs := [][]int{{0, 0, 1}, {1, 1, 1}}
	dtrajs := [][]int{{0, 2, 1}, {3, 0, 0}}
	K, n, err := NormalizeTrajs(ttrajs, dtrajs)
	if err != nil {
		Te.Fatal(err)
	}
	if K != 2 || n != 4 {
		Te.Errorf("got K=%d n=%d, want K=2 n=4", K, n)
	}
}

func TestNormalizeTrajsSingle(Te *testing.T) {
	K, n, err := NormalizeTrajs(SingleTraj([]int{0, 0}), SingleTraj([]int{1, 0}))
	if err != nil {
		Te.Fatal(err)
	}
	if K != 1 || n != 2 {
		Te.Errorf("got K=%d n=%d, want K=1 n=2", K, n)
	}
}

func TestNormalizeTrajsErrors(Te *testing.T) {
	//mismatched pair lengths
	_, _, err := NormalizeTrajs([][]int{{0, 0}}, [][]int{{0, 0, 0}})
	if _, ok := err.(ShapeError); !ok {
		Te.Errorf("length mismatch should be a ShapeError, got %v", err)
	}
	//mismatched list lengths
	_, _, err = NormalizeTrajs([][]int{{0}}, [][]int{{0}, {1}})
	if _, ok := err.(ShapeError); !ok {
		Te.Errorf("list mismatch should be a ShapeError, got %v", err)
	}
	//negative state
	_, _, err = NormalizeTrajs([][]int{{0, -1}}, [][]int{{0, 0}})
	if _, ok := err.(ShapeError); !ok {
		Te.Errorf("negative state should be a ShapeError, got %v", err)
	}
	//empty input
	_, _, err = NormalizeTrajs(nil, nil)
	if _, ok := err.(ShapeError); !ok {
		Te.Errorf("empty input should be a ShapeError, got %v", err)
	}
}
