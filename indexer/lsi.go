package indexer

import (
	"time"

	"gonum.org/v1/gonum/mat"
)

// LSIModel is the reduced ("economy") singular value decomposition A = T Σ Dᵗ
// of a terms x documents matrix A.  Its rank is min(#terms, #documents).
//
// An LSIModel never changes once built; accessors hand out copies.
type LSIModel struct {
	t     *mat.Dense // terms x rank
	sigma []float64  // rank, descending
	dt    *mat.Dense // rank x documents
}

// factorize computes the thin SVD of a.
func factorize(a mat.Matrix) (*LSIModel, error) {
	defer FactorizeTimer.UpdateSince(time.Now())

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, ErrFactorization
	}

	var (
		u  mat.Dense
		v  mat.Dense
		dt mat.Dense
	)
	svd.UTo(&u)
	svd.VTo(&v)
	dt.CloneFrom(v.T())

	lsi := &LSIModel{
		t:     &u,
		sigma: svd.Values(nil),
		dt:    &dt,
	}
	return lsi, nil
}

// newLSIModel assembles a model from previously computed factors.
func newLSIModel(t *mat.Dense, sigma []float64, dt *mat.Dense) *LSIModel {
	lsi := &LSIModel{
		t:     t,
		sigma: sigma,
		dt:    dt,
	}
	return lsi
}

// Rank returns the number of latent dimensions.
func (lsi *LSIModel) Rank() int { return len(lsi.sigma) }

// TermLoadings returns a copy of T (terms x rank).
func (lsi *LSIModel) TermLoadings() *mat.Dense { return mat.DenseCopyOf(lsi.t) }

// SingularValues returns a copy of σ in descending order.
func (lsi *LSIModel) SingularValues() []float64 {
	sigma := make([]float64, len(lsi.sigma))
	copy(sigma, lsi.sigma)
	return sigma
}

// DocumentLoadings returns a copy of Dᵗ (rank x documents).
func (lsi *LSIModel) DocumentLoadings() *mat.Dense { return mat.DenseCopyOf(lsi.dt) }

// DocumentVector returns the latent coordinates of training document j, i.e.
// column j of Dᵗ.  Folding that document's own column reproduces them.
func (lsi *LSIModel) DocumentVector(j int) []float64 {
	return mat.Col(nil, j, lsi.dt)
}

// fold projects a term-space vector into the latent space: vec · T · Σ⁻¹.
func (lsi *LSIModel) fold(vec []float64) ([]float64, error) {
	for _, s := range lsi.sigma {
		if s == 0 {
			return nil, ErrSingularFactorization
		}
	}

	var (
		q    = mat.NewVecDense(len(vec), vec)
		proj mat.VecDense
		out  = make([]float64, len(lsi.sigma))
	)
	proj.MulVec(lsi.t.T(), q)
	for k, s := range lsi.sigma {
		out[k] = proj.AtVec(k) / s
	}
	return out, nil
}
