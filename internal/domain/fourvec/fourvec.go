// Package fourvec implements the Lorentz four-vector arithmetic needed to
// combine leptons into Z and ZZ candidates.
package fourvec

import "math"

// P4 is a four-momentum in Cartesian components.
type P4 struct {
	Px, Py, Pz, E float64
}

// FromPtEtaPhiM builds a four-momentum from collider coordinates.
func FromPtEtaPhiM(pt, eta, phi, m float64) P4 {
	px := pt * math.Cos(phi)
	py := pt * math.Sin(phi)
	pz := pt * math.Sinh(eta)
	p2 := px*px + py*py + pz*pz
	return P4{Px: px, Py: py, Pz: pz, E: math.Sqrt(p2 + m*m)}
}

// Add returns p+q.
func (p P4) Add(q P4) P4 {
	return P4{Px: p.Px + q.Px, Py: p.Py + q.Py, Pz: p.Pz + q.Pz, E: p.E + q.E}
}

// Sum adds any number of four-vectors.
func Sum(ps ...P4) P4 {
	var s P4
	for _, p := range ps {
		s = s.Add(p)
	}
	return s
}

// P2 returns the squared three-momentum.
func (p P4) P2() float64 {
	return p.Px*p.Px + p.Py*p.Py + p.Pz*p.Pz
}

// M2 returns the squared invariant mass.
func (p P4) M2() float64 {
	return p.E*p.E - p.P2()
}

// Mass returns the invariant mass. Space-like vectors give -sqrt(-m2).
func (p P4) Mass() float64 {
	m2 := p.M2()
	if m2 < 0 {
		return -math.Sqrt(-m2)
	}
	return math.Sqrt(m2)
}

// Pt returns the transverse momentum.
func (p P4) Pt() float64 {
	return math.Hypot(p.Px, p.Py)
}

// Phi returns the azimuthal angle in (-pi, pi].
func (p P4) Phi() float64 {
	if p.Px == 0 && p.Py == 0 {
		return 0
	}
	return math.Atan2(p.Py, p.Px)
}

// Eta returns the pseudorapidity. Vectors along the beam give ±Inf.
func (p P4) Eta() float64 {
	pt := p.Pt()
	if pt == 0 {
		switch {
		case p.Pz > 0:
			return math.Inf(1)
		case p.Pz < 0:
			return math.Inf(-1)
		}
		return 0
	}
	return math.Asinh(p.Pz / pt)
}

// BoostVector returns the velocity (beta) of the frame in which p is at rest.
func (p P4) BoostVector() (bx, by, bz float64) {
	if p.E == 0 {
		return 0, 0, 0
	}
	return p.Px / p.E, p.Py / p.E, p.Pz / p.E
}

// Boost applies a Lorentz boost with velocity (bx, by, bz).
func (p P4) Boost(bx, by, bz float64) P4 {
	b2 := bx*bx + by*by + bz*bz
	if b2 == 0 {
		return p
	}
	gamma := 1 / math.Sqrt(1-b2)
	bp := bx*p.Px + by*p.Py + bz*p.Pz
	gamma2 := (gamma - 1) / b2
	return P4{
		Px: p.Px + gamma2*bp*bx + gamma*bx*p.E,
		Py: p.Py + gamma2*bp*by + gamma*by*p.E,
		Pz: p.Pz + gamma2*bp*bz + gamma*bz*p.E,
		E:  gamma * (p.E + bp),
	}
}

// TwoBodyDecay splits parent into daughters of masses m1 and m2 emitted along
// (cosTheta, phi) in the parent rest frame, returned in the lab frame.
// ok is false when the decay is kinematically forbidden.
func TwoBodyDecay(parent P4, m1, m2, cosTheta, phi float64) (d1, d2 P4, ok bool) {
	M := parent.Mass()
	if M <= 0 || m1+m2 > M {
		return P4{}, P4{}, false
	}
	// Momentum of each daughter in the rest frame.
	q := math.Sqrt((M*M-(m1+m2)*(m1+m2))*(M*M-(m1-m2)*(m1-m2))) / (2 * M)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	qx := q * sinTheta * math.Cos(phi)
	qy := q * sinTheta * math.Sin(phi)
	qz := q * cosTheta

	r1 := P4{Px: qx, Py: qy, Pz: qz, E: math.Sqrt(q*q + m1*m1)}
	r2 := P4{Px: -qx, Py: -qy, Pz: -qz, E: math.Sqrt(q*q + m2*m2)}

	bx, by, bz := parent.BoostVector()
	return r1.Boost(bx, by, bz), r2.Boost(bx, by, bz), true
}
