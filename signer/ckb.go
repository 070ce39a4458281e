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
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/blinklabs-io/gockb"
	"github.com/blinklabs-io/gockb/client"
	"github.com/blinklabs-io/gockb/ledger"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// CkbSigner signs for the native secp256k1 blake160 sighash-all lock
type CkbSigner struct {
	*sighashSigner
}

func NewCkbSigner(
	c client.Client,
	keys []KeyProvider,
	options ...SignerOptionFunc,
) (*CkbSigner, error) {
	s, err := newSighashSigner(c, ckbVariant{}, keys, options...)
	if err != nil {
		return nil, err
	}
	return &CkbSigner{sighashSigner: s}, nil
}

type ckbVariant struct{}

func (ckbVariant) signerType() SignerType { return SignerTypeCkb }

func (ckbVariant) signType() SignType { return SignTypeCkbSecp256k1 }

func (ckbVariant) identity(pub *secp256k1.PublicKey) string {
	return "0x" + hex.EncodeToString(pub.SerializeCompressed())
}

func (ckbVariant) lockScript(c client.Client, pub *secp256k1.PublicKey) (ledger.Script, error) {
	return c.KnownScript(
		gockb.KnownScriptSecp256k1Blake160,
		ledger.Blake160(pub.SerializeCompressed()),
	)
}

func (ckbVariant) cellDeps(c client.Client) ([]ledger.CellDep, error) {
	dep, err := c.KnownScriptCellDep(gockb.KnownScriptSecp256k1Blake160)
	if err != nil {
		return nil, err
	}
	return []ledger.CellDep{dep}, nil
}

func (ckbVariant) lockSize() int { return RecoverableSignatureSize }

func (ckbVariant) signDigest(
	ctx context.Context,
	key KeyProvider,
	digest ledger.Hash,
) ([]byte, error) {
	return key.SignRecoverable(ctx, digest[:])
}

func (ckbVariant) signMessage(
	ctx context.Context,
	key KeyProvider,
	message []byte,
) (string, error) {
	digest := CkbMessageHash(message)
	sig, err := key.SignRecoverable(ctx, digest[:])
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(sig), nil
}

func recoverCkbMessage(message []byte, signature string) (*secp256k1.PublicKey, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	digest := CkbMessageHash(message)
	return recoverPublicKey(sig, digest[:])
}
