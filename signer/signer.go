// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package signer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/blinklabs-io/gockb/client"
	"github.com/blinklabs-io/gockb/ledger"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// SignerType names the signing ecosystem of a signer
type SignerType string

const (
	SignerTypeCkb SignerType = "CKB"
	SignerTypeBtc SignerType = "BTC"
	SignerTypeEvm SignerType = "EVM"
)

// SignType names a message signature scheme
type SignType string

const (
	SignTypeCkbSecp256k1 SignType = "CkbSecp256k1"
	SignTypeBtcEcdsa     SignType = "BtcEcdsa"
	SignTypeEvmPersonal  SignType = "EvmPersonal"
)

// Signature is a message signature together with the identity that produced it
type Signature struct {
	Signature string   `json:"signature"`
	Identity  string   `json:"identity"`
	SignType  SignType `json:"signType"`
}

// Signer signs transactions spending the cells locked by its keys
type Signer interface {
	Type() SignerType
	SignType() SignType
	PublicIdentity(ctx context.Context) (string, error)
	Addresses(ctx context.Context) ([]ledger.Address, error)
	LockScripts(ctx context.Context) ([]ledger.Script, error)
	PrepareTransaction(ctx context.Context, tx *ledger.Transaction) (*ledger.Transaction, error)
	// SignOnlyTransaction signs a prepared transaction. It returns tx itself when no
	// input is locked by the signer
	SignOnlyTransaction(ctx context.Context, tx *ledger.Transaction) (*ledger.Transaction, error)
	SignTransaction(ctx context.Context, tx *ledger.Transaction) (*ledger.Transaction, error)
	SignMessage(ctx context.Context, message []byte) (*Signature, error)
}

// lockVariant is the closed set of lock templates a signer can sign for
type lockVariant interface {
	signerType() SignerType
	signType() SignType
	identity(pub *secp256k1.PublicKey) string
	lockScript(c client.Client, pub *secp256k1.PublicKey) (ledger.Script, error)
	cellDeps(c client.Client) ([]ledger.CellDep, error)
	// lockSize is the exact size of the witness lock produced by signDigest
	lockSize() int
	signDigest(ctx context.Context, key KeyProvider, digest ledger.Hash) ([]byte, error)
	signMessage(ctx context.Context, key KeyProvider, message []byte) (string, error)
}

type SignerOptionFunc func(*sighashSigner)

func WithLogger(logger *slog.Logger) SignerOptionFunc {
	return func(s *sighashSigner) {
		s.logger = logger
	}
}

// sighashSigner implements Signer for any lock variant signing with sighash-all
type sighashSigner struct {
	client  client.Client
	keys    []KeyProvider
	variant lockVariant
	logger  *slog.Logger
}

func newSighashSigner(
	c client.Client,
	variant lockVariant,
	keys []KeyProvider,
	options ...SignerOptionFunc,
) (*sighashSigner, error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	s := &sighashSigner{
		client:  c,
		keys:    keys,
		variant: variant,
	}
	for _, option := range options {
		option(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

func (s *sighashSigner) Type() SignerType {
	return s.variant.signerType()
}

func (s *sighashSigner) SignType() SignType {
	return s.variant.signType()
}

// PublicIdentity returns the identity of the first key
func (s *sighashSigner) PublicIdentity(ctx context.Context) (string, error) {
	pub, err := s.keys[0].PublicKey(ctx)
	if err != nil {
		return "", err
	}
	return s.variant.identity(pub), nil
}

// LockScripts returns one lock script per key, in key order
func (s *sighashSigner) LockScripts(ctx context.Context) ([]ledger.Script, error) {
	ret := make([]ledger.Script, 0, len(s.keys))
	for _, key := range s.keys {
		pub, err := key.PublicKey(ctx)
		if err != nil {
			return nil, err
		}
		lock, err := s.variant.lockScript(s.client, pub)
		if err != nil {
			return nil, err
		}
		ret = append(ret, lock)
	}
	return ret, nil
}

func (s *sighashSigner) Addresses(ctx context.Context) ([]ledger.Address, error) {
	locks, err := s.LockScripts(ctx)
	if err != nil {
		return nil, err
	}
	prefix := s.client.Network().AddressPrefix
	ret := make([]ledger.Address, 0, len(locks))
	for _, lock := range locks {
		ret = append(ret, ledger.NewAddress(prefix, lock))
	}
	return ret, nil
}

type signingGroup struct {
	key   KeyProvider
	lock  ledger.Script
	group []int
}

func (s *sighashSigner) signingGroups(
	ctx context.Context,
	tx *ledger.Transaction,
) ([]signingGroup, error) {
	locks, err := s.LockScripts(ctx)
	if err != nil {
		return nil, err
	}
	var ret []signingGroup
	for idx, lock := range locks {
		group, err := InputGroup(ctx, s.client, tx, lock)
		if err != nil {
			return nil, err
		}
		if len(group) == 0 {
			continue
		}
		ret = append(ret, signingGroup{key: s.keys[idx], lock: lock, group: group})
	}
	return ret, nil
}

// PrepareTransaction adds the lock's cell deps and a placeholder witness for each input
// group locked by the signer. Other transactions are returned as an unchanged copy
func (s *sighashSigner) PrepareTransaction(
	ctx context.Context,
	tx *ledger.Transaction,
) (*ledger.Transaction, error) {
	ret := tx.Clone()
	groups, err := s.signingGroups(ctx, ret)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return ret, nil
	}
	deps, err := s.variant.cellDeps(s.client)
	if err != nil {
		return nil, err
	}
	ret.AddCellDeps(deps...)
	for _, g := range groups {
		if err := prepareWitness(ret, g.group, s.variant.lockSize()); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

func (s *sighashSigner) SignOnlyTransaction(
	ctx context.Context,
	tx *ledger.Transaction,
) (*ledger.Transaction, error) {
	groups, err := s.signingGroups(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return tx, nil
	}
	ret := tx.Clone()
	for _, g := range groups {
		digest, err := SighashAll(ret, g.group, s.variant.lockSize())
		if err != nil {
			return nil, err
		}
		lock, err := s.variant.signDigest(ctx, g.key, digest)
		if err != nil {
			return nil, err
		}
		if len(lock) != s.variant.lockSize() {
			return nil, fmt.Errorf(
				"signed lock is %d bytes, expected %d",
				len(lock),
				s.variant.lockSize(),
			)
		}
		wa, err := ret.GetWitnessArgsAt(g.group[0])
		if err != nil {
			return nil, err
		}
		if wa == nil {
			wa = &ledger.WitnessArgs{}
		}
		wa.Lock = lock
		ret.SetWitnessArgsAt(g.group[0], *wa)
		s.logger.Debug(
			"signed input group",
			"component", "signer",
			"signer_type", string(s.variant.signerType()),
			"lock_hash", g.lock.Hash().String(),
			"inputs", len(g.group),
		)
	}
	return ret, nil
}

func (s *sighashSigner) SignTransaction(
	ctx context.Context,
	tx *ledger.Transaction,
) (*ledger.Transaction, error) {
	prepared, err := s.PrepareTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}
	return s.SignOnlyTransaction(ctx, prepared)
}

// SignMessage signs message with the first key
func (s *sighashSigner) SignMessage(ctx context.Context, message []byte) (*Signature, error) {
	identity, err := s.PublicIdentity(ctx)
	if err != nil {
		return nil, err
	}
	sig, err := s.variant.signMessage(ctx, s.keys[0], message)
	if err != nil {
		return nil, err
	}
	return &Signature{
		Signature: sig,
		Identity:  identity,
		SignType:  s.variant.signType(),
	}, nil
}

// VerifyMessage checks that sig was produced over message by sig.Identity
func VerifyMessage(message []byte, sig Signature) (bool, error) {
	var (
		pub      *secp256k1.PublicKey
		identity string
		err      error
	)
	switch sig.SignType {
	case SignTypeCkbSecp256k1:
		pub, err = recoverCkbMessage(message, sig.Signature)
		if err == nil {
			identity = ckbVariant{}.identity(pub)
		}
	case SignTypeBtcEcdsa:
		pub, err = recoverBtcMessage(message, sig.Signature)
		if err == nil {
			identity = btcVariant{}.identity(pub)
		}
	case SignTypeEvmPersonal:
		pub, err = recoverEvmMessage(message, sig.Signature)
		if err == nil {
			identity = evmVariant{}.identity(pub)
		}
	default:
		return false, &UnsupportedSignTypeError{SignType: sig.SignType}
	}
	if err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			return false, nil
		}
		return false, err
	}
	return identity == normalizeIdentity(sig.Identity), nil
}

// Compile-time checks that the variants implement Signer
var (
	_ Signer = (*CkbSigner)(nil)
	_ Signer = (*BtcSigner)(nil)
	_ Signer = (*EvmSigner)(nil)
)
