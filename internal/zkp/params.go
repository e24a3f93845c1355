package zkp

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/dmitrijs2005/zkpauth/internal/common"
)

// Params describes the group every party computes in: a prime modulus P, the
// prime order Q of the working subgroup of Z_p^*, and two independent
// generators G and H of that subgroup. Both ends of the protocol must use
// the same parameter set; Name identifies it on the wire.
type Params struct {
	Name string
	P    *big.Int
	Q    *big.Int
	G    *big.Int
	H    *big.Int
}

var one = big.NewInt(1)

// Validate checks the parameter set once at startup. It rejects degenerate
// generators and generators that do not lie in the order-Q subgroup. It does
// not prove primality of P or Q; parameter sets are operator-published
// configuration, not untrusted input.
func (p Params) Validate() error {
	if p.P == nil || p.Q == nil || p.G == nil || p.H == nil {
		return fmt.Errorf("%w: missing field in parameter set %q", common.ErrInvalidParameters, p.Name)
	}
	if p.P.Cmp(big.NewInt(3)) <= 0 || p.Q.Cmp(one) <= 0 {
		return fmt.Errorf("%w: modulus or order too small", common.ErrInvalidParameters)
	}
	// Q must divide the group order P-1, otherwise no order-Q subgroup exists.
	pm1 := new(big.Int).Sub(p.P, one)
	if new(big.Int).Mod(pm1, p.Q).Sign() != 0 {
		return fmt.Errorf("%w: q does not divide p-1", common.ErrInvalidParameters)
	}
	for _, g := range []*big.Int{p.G, p.H} {
		if g.Cmp(one) <= 0 || g.Cmp(pm1) >= 0 {
			return fmt.Errorf("%w: generator out of range", common.ErrInvalidParameters)
		}
		if new(big.Int).Exp(g, p.Q, p.P).Cmp(one) != 0 {
			return fmt.Errorf("%w: generator not of order q", common.ErrInvalidParameters)
		}
	}
	if p.G.Cmp(p.H) == 0 {
		return fmt.Errorf("%w: generators must be distinct", common.ErrInvalidParameters)
	}
	return nil
}

// ElementLen is the fixed wire width of a group element, in bytes.
func (p Params) ElementLen() int {
	return (p.P.BitLen() + 7) / 8
}

// ScalarLen is the fixed wire width of a scalar, in bytes.
func (p Params) ScalarLen() int {
	return (p.Q.BitLen() + 7) / 8
}

// ElementBytes encodes a group element as a fixed-width big-endian byte
// string, left-padded with zeros.
func (p Params) ElementBytes(x *big.Int) []byte {
	return leftPad(x, p.ElementLen())
}

// ScalarBytes encodes a scalar as a fixed-width big-endian byte string.
func (p Params) ScalarBytes(x *big.Int) []byte {
	return leftPad(x, p.ScalarLen())
}

func leftPad(x *big.Int, size int) []byte {
	b := x.Bytes()
	if len(b) >= size {
		return b
	}
	res := make([]byte, size)
	copy(res[size-len(b):], b)
	return res
}

// ParseElement decodes a big-endian byte string into a group element,
// rejecting values outside [1, P). Rejection happens before the value ever
// reaches the verification equations.
func (p Params) ParseElement(b []byte) (*big.Int, error) {
	if len(b) == 0 || len(b) > p.ElementLen() {
		return nil, fmt.Errorf("%w: element must be 1..%d bytes", common.ErrMalformedRequest, p.ElementLen())
	}
	v := new(big.Int).SetBytes(b)
	if v.Sign() <= 0 || v.Cmp(p.P) >= 0 {
		return nil, fmt.Errorf("%w: element out of range", common.ErrMalformedRequest)
	}
	return v, nil
}

// ParseScalar decodes a big-endian byte string into a scalar in [0, Q).
func (p Params) ParseScalar(b []byte) (*big.Int, error) {
	if len(b) == 0 || len(b) > p.ScalarLen() {
		return nil, fmt.Errorf("%w: scalar must be 1..%d bytes", common.ErrMalformedRequest, p.ScalarLen())
	}
	v := new(big.Int).SetBytes(b)
	if v.Cmp(p.Q) >= 0 {
		return nil, fmt.Errorf("%w: scalar out of range", common.ErrMalformedRequest)
	}
	return v, nil
}

// RFC5114Name identifies the default parameter set.
const RFC5114Name = "rfc5114-1024-160"

// rfc5114 is the 1024-bit MODP group with a 160-bit prime-order subgroup
// from RFC 5114, section 2.1. The second generator H is derived from a
// fixed seed by hashing into the subgroup, so its discrete log with respect
// to G is not known to anyone.
func rfc5114() Params {
	p := mustHex(
		"B10B8F96A080E01DDE92DE5EAE5D54EC52C99FBCFB06A3C69A6A9DCA52D23B61" +
			"6073E28675A23D189838EF1E2EE652C013ECB4AEA906112324975C3CD49B83BF" +
			"ACCBDD7D90C4BD7098488E9C219A73724EFFD6FAE5644738FAA31A4FF55BCCC0" +
			"A151AF5F0DC8B4BD45BF37DF365C1A65E68CFDA76D4DA708DF1FB2BC2E4A4371")
	q := mustHex("F518AA8781A8DF278ABA4E7D64B7CB9D49462353")
	g := mustHex(
		"A4D1CBD5C3FD34126765A442EFB99905F8104DD258AC507FD6406CFF14266D31" +
			"266FEA1E5C41564B777E690F5504F213160217B4B01B886A5E91547F9E2749F4" +
			"D7FBD7D3B9A92EE1909D0D2263F80A76A6A24C087A091F531DBF0A0169B6A28A" +
			"D662A4D18E73AFA32D779D5918D08BC8858F4DCEF97C2A24855E6EEB22B3B2E5")

	return Params{
		Name: RFC5114Name,
		P:    p,
		Q:    q,
		G:    g,
		H:    hashToSubgroup(p, q, []byte("zkpauth second generator v1")),
	}
}

// hashToSubgroup maps a seed to an element of the order-q subgroup of Z_p^*
// by hashing to Z_p and raising to the cofactor (p-1)/q. The seed is bumped
// until the result is a generator (any element other than the identity).
func hashToSubgroup(p, q *big.Int, seed []byte) *big.Int {
	cofactor := new(big.Int).Div(new(big.Int).Sub(p, one), q)
	for ctr := byte(0); ; ctr++ {
		sum := sha256.Sum256(append(seed, ctr))
		e := new(big.Int).SetBytes(sum[:])
		e.Mod(e, p)
		e.Exp(e, cofactor, p)
		if e.Cmp(one) > 0 {
			return e
		}
	}
}

var paramSets = map[string]Params{
	RFC5114Name: rfc5114(),
}

// DefaultParams returns the parameter set used when none is configured.
func DefaultParams() Params {
	return paramSets[RFC5114Name]
}

// ParamsByName looks up a published parameter set by its wire identifier.
func ParamsByName(name string) (Params, error) {
	ps, ok := paramSets[name]
	if !ok {
		return Params{}, fmt.Errorf("%w: unknown parameter set %q", common.ErrMalformedRequest, name)
	}
	return ps, nil
}

func mustHex(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("zkp: bad hex constant")
	}
	return v
}
