// Package zkp implements the Chaum-Pedersen interactive zero-knowledge
// proof over a prime-order subgroup of Z_p^*. A prover holding a secret x
// with registered public values y1 = g^x, y2 = h^x convinces a verifier
// that it knows x without revealing it:
//
//	prover:   k random, sends r1 = g^k, r2 = h^k
//	verifier: sends random challenge c
//	prover:   sends s = (k - c*x) mod q
//	verifier: accepts iff r1 == g^s * y1^c and r2 == h^s * y2^c (mod p)
//
// All arithmetic is exact modular big-integer arithmetic. Randomness is an
// injected dependency so tests can reproduce known vectors.
package zkp

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// ZKP evaluates the protocol equations for one parameter set. It is
// stateless apart from the parameters and safe for concurrent use.
type ZKP struct {
	params Params
	random io.Reader
}

// Option configures a ZKP instance.
type Option func(*ZKP)

// WithRandom replaces the cryptographic random source. Tests use this to
// supply deterministic nonces and challenges.
func WithRandom(r io.Reader) Option {
	return func(z *ZKP) { z.random = r }
}

// New validates the parameter set and returns a protocol engine for it.
// A validation failure is fatal for the caller: no request may be served
// over inconsistent parameters.
func New(params Params, opts ...Option) (*ZKP, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	z := &ZKP{params: params, random: rand.Reader}
	for _, opt := range opts {
		opt(z)
	}
	return z, nil
}

// Params returns the parameter set the engine was built with.
func (z *ZKP) Params() Params {
	return z.params
}

// Exp returns base^exponent mod p.
func (z *ZKP) Exp(base, exponent *big.Int) *big.Int {
	return new(big.Int).Exp(base, exponent, z.params.P)
}

// Mul returns a*b mod p.
func (z *ZKP) Mul(a, b *big.Int) *big.Int {
	v := new(big.Int).Mul(a, b)
	return v.Mod(v, z.params.P)
}

// ModQ reduces a scalar into its non-negative representative in [0, q).
func (z *ZKP) ModQ(v *big.Int) *big.Int {
	return new(big.Int).Mod(v, z.params.Q)
}

// RandomScalar draws a uniform scalar in [0, q) from the configured source.
func (z *ZKP) RandomScalar() (*big.Int, error) {
	v, err := rand.Int(z.random, z.params.Q)
	if err != nil {
		return nil, fmt.Errorf("drawing random scalar: %w", err)
	}
	return v, nil
}

// Commit computes the public commitment pair (y1, y2) = (g^x, h^x) that is
// registered for a user. Deterministic given parameters and secret.
func (z *ZKP) Commit(secret *big.Int) (y1, y2 *big.Int) {
	return z.Exp(z.params.G, secret), z.Exp(z.params.H, secret)
}

// OpenCommitment starts a proof: it draws a fresh nonce k and returns it
// together with the first-round pair (r1, r2) = (g^k, h^k). The caller must
// keep k for Respond and must never reuse it in another session.
func (z *ZKP) OpenCommitment() (k, r1, r2 *big.Int, err error) {
	k, err = z.RandomScalar()
	if err != nil {
		return nil, nil, nil, err
	}
	r1, r2 = z.Exp(z.params.G, k), z.Exp(z.params.H, k)
	return k, r1, r2, nil
}

// Respond computes the response s = (k - c*x) mod q. big.Int.Mod returns
// the Euclidean remainder, so a negative k - c*x lands on the non-negative
// representative.
func (z *ZKP) Respond(k, secret, challenge *big.Int) *big.Int {
	s := new(big.Int).Mul(challenge, secret)
	s.Sub(k, s)
	return s.Mod(s, z.params.Q)
}

// Verify checks both protocol equations:
//
//	r1 == g^s * y1^c (mod p)
//	r2 == h^s * y2^c (mod p)
//
// Both must hold; checking only one admits forgeries because it leaves the
// equality of the two discrete logs unproven.
func (z *ZKP) Verify(y1, y2, r1, r2, challenge, s *big.Int) bool {
	lhs1 := z.Mul(z.Exp(z.params.G, s), z.Exp(y1, challenge))
	lhs2 := z.Mul(z.Exp(z.params.H, s), z.Exp(y2, challenge))
	return lhs1.Cmp(r1) == 0 && lhs2.Cmp(r2) == 0
}
