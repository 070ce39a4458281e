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
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/blinklabs-io/gockb/client"
	"github.com/blinklabs-io/gockb/ledger"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const btcTransactionMessagePrefix = "CKB (Bitcoin Layer) transaction: 0x"

// BtcSigner signs for Omnilock in Bitcoin mode with Bitcoin signed messages
type BtcSigner struct {
	*sighashSigner
}

func NewBtcSigner(
	c client.Client,
	keys []KeyProvider,
	options ...SignerOptionFunc,
) (*BtcSigner, error) {
	s, err := newSighashSigner(c, btcVariant{}, keys, options...)
	if err != nil {
		return nil, err
	}
	return &BtcSigner{sighashSigner: s}, nil
}

type btcVariant struct{}

func (btcVariant) signerType() SignerType { return SignerTypeBtc }

func (btcVariant) signType() SignType { return SignTypeBtcEcdsa }

func (btcVariant) identity(pub *secp256k1.PublicKey) string {
	return "0x" + hex.EncodeToString(pub.SerializeCompressed())
}

func (btcVariant) lockScript(c client.Client, pub *secp256k1.PublicKey) (ledger.Script, error) {
	return omniLockScript(
		c,
		OmniLockAuthBitcoin,
		btcutil.Hash160(pub.SerializeCompressed()),
	)
}

func (btcVariant) cellDeps(c client.Client) ([]ledger.CellDep, error) {
	return omniLockCellDeps(c)
}

func (btcVariant) lockSize() int { return omniLockWitnessLockSize }

// signBitcoinMessage returns a compact signature with a compressed-key header
func signBitcoinMessage(ctx context.Context, key KeyProvider, message []byte) ([]byte, error) {
	sig, err := key.SignRecoverable(ctx, BitcoinMessageHash(message))
	if err != nil {
		return nil, err
	}
	return toCompact(sig), nil
}

func (btcVariant) signDigest(
	ctx context.Context,
	key KeyProvider,
	digest ledger.Hash,
) ([]byte, error) {
	message := btcTransactionMessagePrefix + hex.EncodeToString(digest[:])
	sig, err := signBitcoinMessage(ctx, key, []byte(message))
	if err != nil {
		return nil, err
	}
	return OmniLockWitnessLock(sig), nil
}

func (btcVariant) signMessage(
	ctx context.Context,
	key KeyProvider,
	message []byte,
) (string, error) {
	sig, err := signBitcoinMessage(ctx, key, message)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

func recoverBtcMessage(message []byte, signature string) (*secp256k1.PublicKey, error) {
	compact, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	if len(compact) != RecoverableSignatureSize || compact[0] < 27 {
		return nil, ErrInvalidSignature
	}
	return recoverPublicKey(fromCompact(compact), BitcoinMessageHash(message))
}
