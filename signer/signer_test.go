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

package signer_test

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/blinklabs-io/gockb"
	"github.com/blinklabs-io/gockb/client"
	"github.com/blinklabs-io/gockb/internal/test"
	test_ledger "github.com/blinklabs-io/gockb/internal/test/ledger"
	"github.com/blinklabs-io/gockb/ledger"
	"github.com/blinklabs-io/gockb/molecule"
	"github.com/blinklabs-io/gockb/signer"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signerFactory func(client.Client, []signer.KeyProvider) (signer.Signer, error)

var signerFactories = map[string]signerFactory{
	"ckb": func(c client.Client, keys []signer.KeyProvider) (signer.Signer, error) {
		return signer.NewCkbSigner(c, keys)
	},
	"btc": func(c client.Client, keys []signer.KeyProvider) (signer.Signer, error) {
		return signer.NewBtcSigner(c, keys)
	},
	"evm": func(c client.Client, keys []signer.KeyProvider) (signer.Signer, error) {
		return signer.NewEvmSigner(c, keys)
	},
}

func testKey(fill byte) *signer.LocalKey {
	return signer.NewLocalKey(secp256k1.PrivKeyFromBytes(test.Bytes(32, fill)))
}

func cellAt(lock ledger.Script, index uint32, capacity uint64) ledger.Cell {
	return ledger.Cell{
		OutPoint: ledger.OutPoint{TxHash: ledger.HashOf([]byte("funding")), Index: index},
		Output:   ledger.CellOutput{Capacity: capacity, Lock: lock},
		Data:     []byte{},
	}
}

func spendingTx(cells ...ledger.Cell) *ledger.Transaction {
	tx := ledger.NewTransaction()
	var total uint64
	for _, cell := range cells {
		tx.AddInput(ledger.CellInput{PreviousOutput: cell.OutPoint})
		total += cell.Output.Capacity
	}
	tx.AddOutput(
		ledger.CellOutput{Capacity: total - 1000, Lock: cells[0].Output.Lock},
		[]byte{},
	)
	return tx
}

// signatureFromLock extracts the R || S || recovery id signature from a witness lock
func signatureFromLock(t *testing.T, signerType signer.SignerType, lock []byte) []byte {
	if signerType == signer.SignerTypeCkb {
		return lock
	}
	fields, err := molecule.UnpackTable("OmniLockWitnessLock", lock, 3)
	require.NoError(t, err)
	sig, err := molecule.UnpackBytesOpt("signature", fields[0])
	require.NoError(t, err)
	require.Len(t, sig, signer.RecoverableSignatureSize)
	if signerType == signer.SignerTypeBtc {
		// Compact header 31 + recovery id
		require.GreaterOrEqual(t, sig[0], byte(31))
		return append(append([]byte{}, sig[1:]...), sig[0]-31)
	}
	return sig
}

func signedDigest(signerType signer.SignerType, digest ledger.Hash) []byte {
	switch signerType {
	case signer.SignerTypeBtc:
		return signer.BitcoinMessageHash(
			[]byte("CKB (Bitcoin Layer) transaction: 0x" + hex.EncodeToString(digest[:])),
		)
	case signer.SignerTypeEvm:
		return signer.EthereumMessageHash(digest[:])
	}
	return digest[:]
}

func recoverKey(t *testing.T, sig []byte, digest []byte) *secp256k1.PublicKey {
	compact := append([]byte{27 + 4 + sig[64]}, sig[:64]...)
	pub, _, err := ecdsa.RecoverCompact(compact, digest)
	require.NoError(t, err)
	return pub
}

func TestSignTransaction(t *testing.T) {
	ctx := context.Background()
	for name, factory := range signerFactories {
		t.Run(name, func(t *testing.T) {
			key := testKey(0x11)
			mock := test_ledger.NewMockLedger(gockb.NetworkTestnet)
			s, err := factory(mock, []signer.KeyProvider{key})
			require.NoError(t, err)
			locks, err := s.LockScripts(ctx)
			require.NoError(t, err)
			require.Len(t, locks, 1)
			first := cellAt(locks[0], 0, 1000*ledger.ShannonsPerByte)
			second := cellAt(locks[0], 1, 500*ledger.ShannonsPerByte)
			mock.AddCell(first)
			mock.AddCell(second)
			tx := spendingTx(first, second)
			tx.Witnesses = [][]byte{{}, {}, {0xaa, 0xbb}}
			original := tx.Encode()

			prepared, err := s.PrepareTransaction(ctx, tx)
			require.NoError(t, err)
			assert.Equal(t, original, tx.Encode())
			assert.NotEmpty(t, prepared.CellDeps)
			placeholder, err := prepared.GetWitnessArgsAt(0)
			require.NoError(t, err)
			require.NotNil(t, placeholder)

			signed, err := s.SignOnlyTransaction(ctx, prepared)
			require.NoError(t, err)
			// Signatures fill the placeholder exactly
			assert.Equal(t, prepared.Size(), signed.Size())
			assert.Equal(t, prepared.Hash(), signed.Hash())
			wa, err := signed.GetWitnessArgsAt(0)
			require.NoError(t, err)
			require.NotNil(t, wa)
			assert.Len(t, wa.Lock, len(placeholder.Lock))
			assert.NotEqual(t, placeholder.Lock, wa.Lock)
			assert.Empty(t, signed.Witnesses[1])

			digest, err := signer.SighashAll(prepared, []int{0, 1}, len(placeholder.Lock))
			require.NoError(t, err)
			sig := signatureFromLock(t, s.Type(), wa.Lock)
			pub := recoverKey(t, sig, signedDigest(s.Type(), digest))
			expected, err := key.PublicKey(ctx)
			require.NoError(t, err)
			assert.True(t, expected.IsEqual(pub))

			// SignTransaction prepares on its own
			again, err := s.SignTransaction(ctx, tx)
			require.NoError(t, err)
			assert.Equal(t, signed.Encode(), again.Encode())
		})
	}
}

func TestWitnessSizes(t *testing.T) {
	ctx := context.Background()
	expected := map[string]int{"ckb": 85, "btc": 105, "evm": 105}
	for name, factory := range signerFactories {
		t.Run(name, func(t *testing.T) {
			mock := test_ledger.NewMockLedger(gockb.NetworkMainnet)
			s, err := factory(mock, []signer.KeyProvider{testKey(0x22)})
			require.NoError(t, err)
			locks, err := s.LockScripts(ctx)
			require.NoError(t, err)
			cell := cellAt(locks[0], 0, 1000*ledger.ShannonsPerByte)
			mock.AddCell(cell)
			prepared, err := s.PrepareTransaction(ctx, spendingTx(cell))
			require.NoError(t, err)
			signed, err := s.SignOnlyTransaction(ctx, prepared)
			require.NoError(t, err)
			assert.Len(t, prepared.Witnesses[0], expected[name])
			assert.Len(t, signed.Witnesses[0], expected[name])
			assert.Equal(t, prepared.Size(), signed.Size())
			assert.NotEqual(t, prepared.Witnesses[0], signed.Witnesses[0])
		})
	}
}

func TestSignOnlyTransactionNoOp(t *testing.T) {
	ctx := context.Background()
	for name, factory := range signerFactories {
		t.Run(name, func(t *testing.T) {
			mock := test_ledger.NewMockLedger(gockb.NetworkTestnet)
			s, err := factory(mock, []signer.KeyProvider{testKey(0x11)})
			require.NoError(t, err)
			foreign := gockb.NetworkTestnet.KnownScripts[gockb.KnownScriptSecp256k1Blake160].Script(
				test.Bytes(20, 0x99),
			)
			cell := cellAt(foreign, 0, 1000*ledger.ShannonsPerByte)
			mock.AddCell(cell)
			tx := spendingTx(cell)
			tx.Witnesses = [][]byte{{0x01}}
			original := tx.Encode()
			ret, err := s.SignOnlyTransaction(ctx, tx)
			require.NoError(t, err)
			assert.Same(t, tx, ret)
			assert.Equal(t, original, ret.Encode())
			prepared, err := s.PrepareTransaction(ctx, tx)
			require.NoError(t, err)
			assert.Equal(t, original, prepared.Encode())
		})
	}
}

func TestMultipleKeys(t *testing.T) {
	ctx := context.Background()
	keys, err := signer.KeysFromMnemonic(
		"abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about",
		"",
		2,
	)
	require.NoError(t, err)
	mock := test_ledger.NewMockLedger(gockb.NetworkTestnet)
	s, err := signer.NewCkbSigner(mock, []signer.KeyProvider{keys[0], keys[1]})
	require.NoError(t, err)
	locks, err := s.LockScripts(ctx)
	require.NoError(t, err)
	require.Len(t, locks, 2)
	assert.False(t, locks[0].Equal(locks[1]))
	addresses, err := s.Addresses(ctx)
	require.NoError(t, err)
	for _, address := range addresses {
		assert.True(t, strings.HasPrefix(address.String(), "ckt1"))
	}

	a := cellAt(locks[1], 0, 300*ledger.ShannonsPerByte)
	b := cellAt(locks[0], 1, 300*ledger.ShannonsPerByte)
	c := cellAt(locks[1], 2, 300*ledger.ShannonsPerByte)
	mock.AddCell(a)
	mock.AddCell(b)
	mock.AddCell(c)
	signed, err := s.SignTransaction(ctx, spendingTx(a, b, c))
	require.NoError(t, err)
	require.Len(t, signed.Witnesses, 2)
	for idx := range 2 {
		wa, err := signed.GetWitnessArgsAt(idx)
		require.NoError(t, err)
		require.NotNil(t, wa)
		assert.Len(t, wa.Lock, signer.RecoverableSignatureSize)
	}
	// The group of locks[1] is inputs 0 and 2
	digest, err := signer.SighashAll(signed, []int{0, 2}, signer.RecoverableSignatureSize)
	require.NoError(t, err)
	wa, _ := signed.GetWitnessArgsAt(0)
	pub := recoverKey(t, wa.Lock, digest[:])
	expected, _ := keys[1].PublicKey(ctx)
	assert.True(t, expected.IsEqual(pub))
}

func TestSighashAll(t *testing.T) {
	tx := ledger.NewTransaction()
	for i := range uint32(3) {
		tx.AddInput(ledger.CellInput{
			PreviousOutput: ledger.OutPoint{TxHash: ledger.HashOf([]byte("in")), Index: i},
		})
	}
	tx.SetWitnessArgsAt(0, ledger.WitnessArgs{Lock: test.Bytes(65, 0x00)})
	tx.Witnesses = append(tx.Witnesses, []byte{}, []byte{0x01}, []byte{0x02})
	group := []int{0, 2}
	base, err := signer.SighashAll(tx, group, 65)
	require.NoError(t, err)

	// The first lock is always hashed as zeros
	changed := tx.Clone()
	changed.SetWitnessArgsAt(0, ledger.WitnessArgs{Lock: test.Bytes(65, 0x55)})
	digest, err := signer.SighashAll(changed, group, 65)
	require.NoError(t, err)
	assert.Equal(t, base, digest)

	changed.SetWitnessArgsAt(0, ledger.WitnessArgs{Lock: []byte{}, InputType: []byte{0x01}})
	digest, err = signer.SighashAll(changed, group, 65)
	require.NoError(t, err)
	assert.NotEqual(t, base, digest)

	// Other group members are covered
	changed = tx.Clone()
	changed.Witnesses[2] = []byte{0x03}
	digest, err = signer.SighashAll(changed, group, 65)
	require.NoError(t, err)
	assert.NotEqual(t, base, digest)

	// Inputs outside the group are not
	changed = tx.Clone()
	changed.Witnesses[1] = []byte{0x04}
	digest, err = signer.SighashAll(changed, group, 65)
	require.NoError(t, err)
	assert.Equal(t, base, digest)

	// Witnesses beyond the inputs are covered
	changed = tx.Clone()
	changed.Witnesses[3] = []byte{0x05}
	digest, err = signer.SighashAll(changed, group, 65)
	require.NoError(t, err)
	assert.NotEqual(t, base, digest)

	_, err = signer.SighashAll(tx, nil, 65)
	assert.Error(t, err)
}

func TestSignMessage(t *testing.T) {
	ctx := context.Background()
	message := []byte("hello world")
	for name, factory := range signerFactories {
		t.Run(name, func(t *testing.T) {
			mock := test_ledger.NewMockLedger(gockb.NetworkTestnet)
			s, err := factory(mock, []signer.KeyProvider{testKey(0x33)})
			require.NoError(t, err)
			sig, err := s.SignMessage(ctx, message)
			require.NoError(t, err)
			assert.Equal(t, s.SignType(), sig.SignType)
			identity, err := s.PublicIdentity(ctx)
			require.NoError(t, err)
			assert.Equal(t, identity, sig.Identity)

			ok, err := signer.VerifyMessage(message, *sig)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = signer.VerifyMessage([]byte("hello there"), *sig)
			require.NoError(t, err)
			assert.False(t, ok)

			other, err := factory(mock, []signer.KeyProvider{testKey(0x44)})
			require.NoError(t, err)
			otherIdentity, err := other.PublicIdentity(ctx)
			require.NoError(t, err)
			forged := *sig
			forged.Identity = otherIdentity
			ok, err = signer.VerifyMessage(message, forged)
			require.NoError(t, err)
			assert.False(t, ok)

			// Identities compare case-insensitively
			upper := *sig
			upper.Identity = "0x" + strings.ToUpper(strings.TrimPrefix(sig.Identity, "0x"))
			ok, err = signer.VerifyMessage(message, upper)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
	_, err := signer.VerifyMessage(message, signer.Signature{SignType: "Schnorr"})
	assert.ErrorIs(t, err, signer.ErrUnsupportedSignType)
}

func TestNewSignerWithoutKeys(t *testing.T) {
	_, err := signer.NewCkbSigner(test_ledger.NewMockLedger(gockb.NetworkTestnet), nil)
	assert.ErrorIs(t, err, signer.ErrNoKeys)
}

func TestUnknownNetworkScripts(t *testing.T) {
	network := gockb.Network{Name: "devnet", AddressPrefix: "ckt"}
	mock := test_ledger.NewMockLedger(network)
	s, err := signer.NewEvmSigner(mock, []signer.KeyProvider{testKey(0x11)})
	require.NoError(t, err)
	_, err = s.LockScripts(context.Background())
	assert.ErrorIs(t, err, client.ErrUnknownScript)
}

func TestParseLocalKey(t *testing.T) {
	key := testKey(0x11)
	parsed, err := signer.ParseLocalKey(key.Hex())
	require.NoError(t, err)
	assert.Equal(t, key.Hex(), parsed.Hex())

	wif, err := btcutil.NewWIF(
		secp256k1.PrivKeyFromBytes(test.Bytes(32, 0x11)),
		&chaincfg.MainNetParams,
		true,
	)
	require.NoError(t, err)
	parsed, err = signer.ParseLocalKey(wif.String())
	require.NoError(t, err)
	assert.Equal(t, key.Hex(), parsed.Hex())

	_, err = signer.ParseLocalKey("0x1234")
	assert.Error(t, err)
	_, err = signer.ParseLocalKey("not a key")
	assert.Error(t, err)
}

func TestKeysFromMnemonic(t *testing.T) {
	mnemonic, err := signer.NewMnemonic()
	require.NoError(t, err)
	assert.Len(t, strings.Fields(mnemonic), 12)
	first, err := signer.KeysFromMnemonic(mnemonic, "", 3)
	require.NoError(t, err)
	require.Len(t, first, 3)
	second, err := signer.KeysFromMnemonic(mnemonic, "", 3)
	require.NoError(t, err)
	for i := range first {
		assert.Equal(t, first[i].Hex(), second[i].Hex())
	}
	assert.NotEqual(t, first[0].Hex(), first[1].Hex())
	withPassphrase, err := signer.KeysFromMnemonic(mnemonic, "secret", 1)
	require.NoError(t, err)
	assert.NotEqual(t, first[0].Hex(), withPassphrase[0].Hex())
	assert.Equal(t, "m/44'/309'/0'/0/2", signer.DerivationPath(2))

	_, err = signer.KeysFromMnemonic("abandon abandon", "", 1)
	assert.ErrorIs(t, err, signer.ErrInvalidMnemonic)
}
