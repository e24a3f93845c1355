package zkp

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/dmitrijs2005/zkpauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toyParams is a tiny group for exhaustive tests: the order-11 subgroup of
// Z_23^*, generated by 4 and 9.
func toyParams() Params {
	return Params{
		Name: "toy",
		P:    big.NewInt(23),
		Q:    big.NewInt(11),
		G:    big.NewInt(4),
		H:    big.NewInt(9),
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, toyParams().Validate())
	require.NoError(t, DefaultParams().Validate())
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"identity generator g", func(p *Params) { p.G = big.NewInt(1) }},
		{"identity generator h", func(p *Params) { p.H = big.NewInt(1) }},
		{"generator outside subgroup", func(p *Params) { p.G = big.NewInt(5) }},
		{"q does not divide p-1", func(p *Params) { p.Q = big.NewInt(7) }},
		{"equal generators", func(p *Params) { p.H = p.G }},
		{"missing field", func(p *Params) { p.H = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := toyParams()
			tt.mutate(&params)
			err := params.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrInvalidParameters))

			_, err = New(params)
			require.Error(t, err)
		})
	}
}

// Known vector: x=6, k=7, c=4 over the toy group.
func TestToyVector(t *testing.T) {
	z, err := New(toyParams())
	require.NoError(t, err)

	x := big.NewInt(6)
	k := big.NewInt(7)
	c := big.NewInt(4)

	y1, y2 := z.Commit(x)
	assert.Equal(t, int64(2), y1.Int64())
	assert.Equal(t, int64(3), y2.Int64())

	r1 := z.Exp(z.Params().G, k)
	r2 := z.Exp(z.Params().H, k)
	assert.Equal(t, int64(8), r1.Int64())
	assert.Equal(t, int64(4), r2.Int64())

	s := z.Respond(k, x, c)
	assert.Equal(t, int64(5), s.Int64())

	assert.True(t, z.Verify(y1, y2, r1, r2, c, s))

	// A response computed for the wrong secret must not verify.
	sFake := z.Respond(k, big.NewInt(7), c)
	assert.False(t, z.Verify(y1, y2, r1, r2, c, sFake))
}

// Respond must reduce a negative k - c*x into [0, q).
func TestRespond_NegativeIntermediate(t *testing.T) {
	z, err := New(toyParams())
	require.NoError(t, err)

	x := big.NewInt(7)
	k := big.NewInt(4)
	c := big.NewInt(5)

	// k - c*x = -31, and -31 mod 11 = 2.
	s := z.Respond(k, x, c)
	assert.Equal(t, int64(2), s.Int64())

	y1, y2 := z.Commit(x)
	r1 := z.Exp(z.Params().G, k)
	r2 := z.Exp(z.Params().H, k)
	assert.True(t, z.Verify(y1, y2, r1, r2, c, s))
}

// Completeness: an honest prover convinces the verifier for every secret,
// nonce, and challenge. Exhaustive over the toy group.
func TestCompleteness_Exhaustive(t *testing.T) {
	z, err := New(toyParams())
	require.NoError(t, err)

	for x := int64(0); x < 11; x++ {
		y1, y2 := z.Commit(big.NewInt(x))
		for k := int64(0); k < 11; k++ {
			r1 := z.Exp(z.Params().G, big.NewInt(k))
			r2 := z.Exp(z.Params().H, big.NewInt(k))
			for c := int64(0); c < 11; c++ {
				s := z.Respond(big.NewInt(k), big.NewInt(x), big.NewInt(c))
				if !z.Verify(y1, y2, r1, r2, big.NewInt(c), s) {
					t.Fatalf("honest proof rejected: x=%d k=%d c=%d", x, k, c)
				}
			}
		}
	}
}

// Soundness: for a commitment pair not derived from one consistent secret,
// no pair of responses can satisfy two distinct challenges. Exhaustive over
// the toy group.
func TestSoundness_InconsistentCommitments(t *testing.T) {
	z, err := New(toyParams())
	require.NoError(t, err)

	// y1 and y2 use different exponents, so no single x explains both.
	y1 := z.Exp(z.Params().G, big.NewInt(3))
	y2 := z.Exp(z.Params().H, big.NewInt(5))

	k := big.NewInt(7)
	r1 := z.Exp(z.Params().G, k)
	r2 := z.Exp(z.Params().H, k)

	accepted := 0
	for c := int64(0); c < 11; c++ {
		for s := int64(0); s < 11; s++ {
			if z.Verify(y1, y2, r1, r2, big.NewInt(c), big.NewInt(s)) {
				accepted++
			}
		}
	}
	// At most one challenge can have an answer; answering two distinct
	// challenges from the same commitment would pin down a consistent x.
	assert.LessOrEqual(t, accepted, 1)
}

// A response computed for one challenge must be rejected when replayed
// against a different challenge on the same commitment.
func TestChallengeReuse_Rejected(t *testing.T) {
	z, err := New(toyParams())
	require.NoError(t, err)

	x := big.NewInt(6)
	k := big.NewInt(7)
	y1, y2 := z.Commit(x)
	r1 := z.Exp(z.Params().G, k)
	r2 := z.Exp(z.Params().H, k)

	c1 := big.NewInt(4)
	c2 := big.NewInt(9)
	s := z.Respond(k, x, c1)

	assert.True(t, z.Verify(y1, y2, r1, r2, c1, s))
	assert.False(t, z.Verify(y1, y2, r1, r2, c2, s))
}

func TestFullSizeGroup_RoundTrip(t *testing.T) {
	z, err := New(DefaultParams())
	require.NoError(t, err)

	x, err := z.RandomScalar()
	require.NoError(t, err)
	c, err := z.RandomScalar()
	require.NoError(t, err)

	y1, y2 := z.Commit(x)
	k, r1, r2, err := z.OpenCommitment()
	require.NoError(t, err)

	s := z.Respond(k, x, c)
	assert.True(t, z.Verify(y1, y2, r1, r2, c, s))
}

// Tamper rejection: flipping any single byte of an encoded proof value
// makes verification fail.
func TestTamperRejection(t *testing.T) {
	params := DefaultParams()
	z, err := New(params)
	require.NoError(t, err)

	x, err := z.RandomScalar()
	require.NoError(t, err)
	c, err := z.RandomScalar()
	require.NoError(t, err)

	y1, y2 := z.Commit(x)
	k, r1, r2, err := z.OpenCommitment()
	require.NoError(t, err)
	s := z.Respond(k, x, c)
	require.True(t, z.Verify(y1, y2, r1, r2, c, s))

	encoded := map[string][]byte{
		"y1": params.ElementBytes(y1),
		"y2": params.ElementBytes(y2),
		"r1": params.ElementBytes(r1),
		"r2": params.ElementBytes(r2),
		"s":  params.ScalarBytes(s),
	}

	for name, orig := range encoded {
		t.Run(name, func(t *testing.T) {
			tampered := make(map[string][]byte, len(encoded))
			for k2, v := range encoded {
				tampered[k2] = v
			}
			mutated := bytes.Clone(orig)
			mutated[len(mutated)/2] ^= 0x01
			tampered[name] = mutated

			ty1, err1 := params.ParseElement(tampered["y1"])
			ty2, err2 := params.ParseElement(tampered["y2"])
			tr1, err3 := params.ParseElement(tampered["r1"])
			tr2, err4 := params.ParseElement(tampered["r2"])
			ts, err5 := params.ParseScalar(tampered["s"])

			// Either the mutation pushed the value out of range (rejected at
			// decode) or the verification equations must fail.
			if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
				return
			}
			assert.False(t, z.Verify(ty1, ty2, tr1, tr2, c, ts))
		})
	}
}

func TestEncoding_FixedWidthRoundTrip(t *testing.T) {
	params := DefaultParams()

	v := big.NewInt(42)
	b := params.ElementBytes(v)
	assert.Len(t, b, params.ElementLen())

	parsed, err := params.ParseElement(b)
	require.NoError(t, err)
	assert.Zero(t, parsed.Cmp(v))

	sb := params.ScalarBytes(v)
	assert.Len(t, sb, params.ScalarLen())
	ps, err := params.ParseScalar(sb)
	require.NoError(t, err)
	assert.Zero(t, ps.Cmp(v))
}

func TestEncoding_RejectsOutOfRange(t *testing.T) {
	params := toyParams()

	_, err := params.ParseElement(nil)
	assert.ErrorIs(t, err, common.ErrMalformedRequest)

	// Zero is the additive absorber, never a subgroup element.
	_, err = params.ParseElement([]byte{0})
	assert.ErrorIs(t, err, common.ErrMalformedRequest)

	// p itself is out of range.
	_, err = params.ParseElement([]byte{23})
	assert.ErrorIs(t, err, common.ErrMalformedRequest)

	// q is not a valid scalar; q-1 is.
	_, err = params.ParseScalar([]byte{11})
	assert.ErrorIs(t, err, common.ErrMalformedRequest)
	v, err := params.ParseScalar([]byte{10})
	require.NoError(t, err)
	assert.Equal(t, int64(10), v.Int64())

	// Oversized encodings are rejected before any arithmetic.
	_, err = params.ParseElement(make([]byte, params.ElementLen()+1))
	assert.ErrorIs(t, err, common.ErrMalformedRequest)
}

func TestRandomScalar_Deterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{0xA5}, 64)

	z1, err := New(toyParams(), WithRandom(bytes.NewReader(seed)))
	require.NoError(t, err)
	z2, err := New(toyParams(), WithRandom(bytes.NewReader(seed)))
	require.NoError(t, err)

	a, err := z1.RandomScalar()
	require.NoError(t, err)
	b, err := z2.RandomScalar()
	require.NoError(t, err)

	assert.Zero(t, a.Cmp(b))
	assert.Negative(t, a.Cmp(toyParams().Q))
	assert.GreaterOrEqual(t, a.Sign(), 0)
}

func TestParamsByName(t *testing.T) {
	ps, err := ParamsByName(RFC5114Name)
	require.NoError(t, err)
	assert.Equal(t, RFC5114Name, ps.Name)

	_, err = ParamsByName("no-such-group")
	assert.ErrorIs(t, err, common.ErrMalformedRequest)
}
