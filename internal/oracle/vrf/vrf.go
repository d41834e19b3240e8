// Package vrf is a local verifiable randomness oracle. Each account owns an
// ed25519 key pair; a request fixes an input alpha, and fulfilment publishes
// gamma = x*H(alpha) with a discrete log equality proof that gamma and the
// account public key share the same secret. The published buffer is
// sha256(gamma).
package vrf

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/KirkDiggler/coinflip/internal/models"
	"github.com/mr-tron/base58"
	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/proof/dleq"
	"go.dedis.ch/kyber/v4/suites"
)

const pointSize = 32

var suite = suites.MustFind("Ed25519")

// Proof is a VRF evaluation with its proof of correctness
type Proof struct {
	Gamma []byte
	DLEQ  []byte
}

// keyPair is the secret scalar of an account and its public point
type keyPair struct {
	secret kyber.Scalar
	public kyber.Point
}

func newKeyPair() *keyPair {
	secret := suite.Scalar().Pick(suite.RandomStream())
	return &keyPair{
		secret: secret,
		public: suite.Point().Mul(secret, nil),
	}
}

func keyPairFromSecret(raw []byte) (*keyPair, error) {
	secret := suite.Scalar()
	if err := secret.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("failed to decode secret: %w", err)
	}
	return &keyPair{
		secret: secret,
		public: suite.Point().Mul(secret, nil),
	}, nil
}

// address is the base58 encoding of the public point
func (k *keyPair) address() (string, error) {
	raw, err := k.public.MarshalBinary()
	if err != nil {
		return "", err
	}
	return base58.Encode(raw), nil
}

func (k *keyPair) secretBytes() ([]byte, error) {
	return k.secret.MarshalBinary()
}

// alphaFor binds a request to the account, its request counter and the caller params
func alphaFor(address string, counter uint64, params []byte) []byte {
	var counterBytes [8]byte
	binary.LittleEndian.PutUint64(counterBytes[:], counter)

	h := sha256.New()
	h.Write([]byte(address))
	h.Write(counterBytes[:])
	h.Write(params)
	return h.Sum(nil)
}

// hashToPoint maps alpha to a point nobody knows the discrete log of
func hashToPoint(alpha []byte) kyber.Point {
	return suite.Point().Pick(suite.XOF(alpha))
}

// evaluate computes gamma = x*H(alpha) and proves it
func (k *keyPair) evaluate(alpha []byte) (*Proof, error) {
	proof, _, gamma, err := dleq.NewDLEQProof(suite, suite.Point().Base(), hashToPoint(alpha), k.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to prove evaluation: %w", err)
	}

	gammaBytes, err := gamma.MarshalBinary()
	if err != nil {
		return nil, err
	}

	proofBytes, err := encodeProof(proof)
	if err != nil {
		return nil, err
	}

	return &Proof{
		Gamma: gammaBytes,
		DLEQ:  proofBytes,
	}, nil
}

// verify checks p against the account address and alpha and returns the output buffer
func verify(address string, alpha []byte, p *Proof) (models.Buffer, error) {
	publicBytes, err := base58.Decode(address)
	if err != nil {
		return models.Buffer{}, fmt.Errorf("failed to decode address: %w", err)
	}

	public := suite.Point()
	if err := public.UnmarshalBinary(publicBytes); err != nil {
		return models.Buffer{}, fmt.Errorf("address is not a public key: %w", err)
	}

	gamma := suite.Point()
	if err := gamma.UnmarshalBinary(p.Gamma); err != nil {
		return models.Buffer{}, fmt.Errorf("failed to decode gamma: %w", err)
	}

	proof, err := decodeProof(p.DLEQ)
	if err != nil {
		return models.Buffer{}, err
	}

	if err := proof.Verify(suite, suite.Point().Base(), hashToPoint(alpha), public, gamma); err != nil {
		return models.Buffer{}, err
	}

	return models.Buffer(sha256.Sum256(p.Gamma)), nil
}

// encodeProof lays out C, R, VG and VH as consecutive 32 byte chunks
func encodeProof(proof *dleq.Proof) ([]byte, error) {
	out := make([]byte, 0, 4*pointSize)
	for _, part := range []interface{ MarshalBinary() ([]byte, error) }{proof.C, proof.R, proof.VG, proof.VH} {
		raw, err := part.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("failed to encode proof: %w", err)
		}
		out = append(out, raw...)
	}
	return out, nil
}

func decodeProof(raw []byte) (*dleq.Proof, error) {
	if len(raw) != 4*pointSize {
		return nil, errors.New("malformed proof")
	}

	proof := &dleq.Proof{
		C:  suite.Scalar(),
		R:  suite.Scalar(),
		VG: suite.Point(),
		VH: suite.Point(),
	}

	parts := []interface{ UnmarshalBinary([]byte) error }{proof.C, proof.R, proof.VG, proof.VH}
	for i, part := range parts {
		if err := part.UnmarshalBinary(raw[i*pointSize : (i+1)*pointSize]); err != nil {
			return nil, fmt.Errorf("failed to decode proof: %w", err)
		}
	}
	return proof, nil
}
