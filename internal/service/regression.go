package service

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Regressor линейная модель за интерфейсом, чтобы тесты могли
// подставить детерминированную заглушку вместо МНК
type Regressor interface {
	Fit(features [][]float64, targets []float64) error
	Predict(features []float64) (float64, error)
}

// leastSquares обычный МНК без регуляризации, с коэффициентом сдвига.
// Решение минимальной нормы через SVD: one-hot блоки коллинеарны со
// сдвигом, и QR на таком плане вырождается.
type leastSquares struct {
	coeffs []float64 // [intercept, w1..wn]
}

// NewLeastSquares создает нерегуляризованную линейную регрессию
func NewLeastSquares() Regressor {
	return &leastSquares{}
}

func (m *leastSquares) Fit(features [][]float64, targets []float64) error {
	if len(features) == 0 {
		return fmt.Errorf("empty training set")
	}
	if len(features) != len(targets) {
		return fmt.Errorf("feature rows (%d) and targets (%d) mismatch", len(features), len(targets))
	}

	cols := len(features[0]) + 1
	a := mat.NewDense(len(features), cols, nil)
	for i, row := range features {
		if len(row)+1 != cols {
			return fmt.Errorf("ragged feature row %d", i)
		}
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
	}

	b := mat.NewVecDense(len(targets), targets)

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return fmt.Errorf("svd factorization did not converge")
	}

	rank := effectiveRank(&svd, len(features), cols)
	if rank == 0 {
		return fmt.Errorf("degenerate design matrix")
	}

	var solution mat.VecDense
	svd.SolveVecTo(&solution, b, rank)

	m.coeffs = make([]float64, cols)
	for i := range m.coeffs {
		m.coeffs[i] = solution.AtVec(i)
	}

	return nil
}

func (m *leastSquares) Predict(features []float64) (float64, error) {
	if m.coeffs == nil {
		return 0, fmt.Errorf("model is not fitted")
	}
	if len(features)+1 != len(m.coeffs) {
		return 0, fmt.Errorf("feature width %d does not match fitted width %d", len(features), len(m.coeffs)-1)
	}

	return m.coeffs[0] + floats.Dot(m.coeffs[1:], features), nil
}

// effectiveRank число сингулярных значений выше машинного порога
func effectiveRank(svd *mat.SVD, rows, cols int) int {
	values := svd.Values(nil)
	if len(values) == 0 {
		return 0
	}

	eps := math.Nextafter(1, 2) - 1
	tol := float64(max(rows, cols)) * values[0] * eps

	rank := 0
	for _, v := range values {
		if v > tol {
			rank++
		}
	}
	return rank
}
