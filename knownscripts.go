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

package gockb

import (
	"bytes"
	"fmt"

	"github.com/blinklabs-io/gockb/ledger"
)

// KnownScript names a well-known script template
type KnownScript string

const (
	KnownScriptSecp256k1Blake160 KnownScript = "Secp256k1Blake160"
	KnownScriptSecp256k1Multisig KnownScript = "Secp256k1Multisig"
	KnownScriptAnyoneCanPay      KnownScript = "AnyoneCanPay"
	KnownScriptTypeId            KnownScript = "TypeId"
	KnownScriptXUdt              KnownScript = "XUdt"
	KnownScriptOmniLock          KnownScript = "OmniLock"
	KnownScriptNervosDao         KnownScript = "NervosDao"
)

// ScriptInfo is the deployment of a known script on a network
type ScriptInfo struct {
	CodeHash ledger.Hash
	HashType ledger.HashType
	CellDep  *ledger.CellDep
}

// Script instantiates the template with args
func (s ScriptInfo) Script(args []byte) ledger.Script {
	ret := ledger.Script{
		CodeHash: s.CodeHash,
		HashType: s.HashType,
	}
	if len(args) > 0 {
		ret.Args = bytes.Clone(args)
	}
	return ret
}

// Clone returns a copy of the template that shares no memory with s
func (s ScriptInfo) Clone() ScriptInfo {
	if s.CellDep != nil {
		dep := *s.CellDep
		s.CellDep = &dep
	}
	return s
}

// Matches reports whether script was instantiated from this template
func (s ScriptInfo) Matches(script ledger.Script) bool {
	return s.CodeHash == script.CodeHash && s.HashType == script.HashType
}

func mustHash(s string) ledger.Hash {
	h, err := ledger.HashFromHex(s)
	if err != nil {
		panic(fmt.Sprintf("invalid known script hash %q: %s", s, err))
	}
	return h
}

func cellDep(txHash string, index uint32, depType ledger.DepType) *ledger.CellDep {
	return &ledger.CellDep{
		OutPoint: ledger.OutPoint{
			TxHash: mustHash(txHash),
			Index:  index,
		},
		DepType: depType,
	}
}

var typeIdInfo = ScriptInfo{
	// "TYPE_ID" right aligned, resolved by the node without a cell dep
	CodeHash: mustHash("0x00000000000000000000000000000000000000000000000000545950455f4944"),
	HashType: ledger.HashTypeType,
}

var mainnetKnownScripts = map[KnownScript]ScriptInfo{
	KnownScriptSecp256k1Blake160: {
		CodeHash: mustHash("0x9bd7e06f3ecf4be0f2fcd2188b23f1b9fcc88e5d4b65a8637b17723bbda3cce8"),
		HashType: ledger.HashTypeType,
		CellDep: cellDep(
			"0x71a7ba8fc96349fea0ed3a5c47992e3b4084b031a42264a018e0072e8172e46c",
			0,
			ledger.DepTypeDepGroup,
		),
	},
	KnownScriptSecp256k1Multisig: {
		CodeHash: mustHash("0x5c5069eb0857efc65e1bca0c07df34c31663b3622fd3876c876320fc9634e2a8"),
		HashType: ledger.HashTypeType,
		CellDep: cellDep(
			"0x71a7ba8fc96349fea0ed3a5c47992e3b4084b031a42264a018e0072e8172e46c",
			1,
			ledger.DepTypeDepGroup,
		),
	},
	KnownScriptAnyoneCanPay: {
		CodeHash: mustHash("0xd369597ff47f29fbc0d47d2e3775370d1250b85140c670e4718af712983a2354"),
		HashType: ledger.HashTypeType,
		CellDep: cellDep(
			"0x4153a2014952d7cac45f285ce9a7c5c0c0e1b21f2d378b82ac1433cb11c25c4d",
			0,
			ledger.DepTypeDepGroup,
		),
	},
	KnownScriptTypeId: typeIdInfo,
	KnownScriptXUdt: {
		CodeHash: mustHash("0x50bd8d6680b8b9cf98b73f3c08faf8b2a21914311954118ad6609be6e78a1b95"),
		HashType: ledger.HashTypeData1,
		CellDep: cellDep(
			"0xc07844ce21b38e4b071dd0e1ee3b0e27afd8d7532491327f39b786343f558ab7",
			0,
			ledger.DepTypeCode,
		),
	},
	KnownScriptOmniLock: {
		CodeHash: mustHash("0x9b819793a64463aed77c615d6cb226eea5487ccfc0783043a587254cda2b6f26"),
		HashType: ledger.HashTypeType,
		CellDep: cellDep(
			"0xc76edf469816aa22f416503c38d0b533d2a018e253e379f134c3985b3472c842",
			0,
			ledger.DepTypeCode,
		),
	},
	KnownScriptNervosDao: {
		CodeHash: mustHash("0x82d76d1b75fe2fd9a27dfbaa65a039221a380d76c926f378d3f81cf3e7e13f2e"),
		HashType: ledger.HashTypeType,
		CellDep: cellDep(
			"0xe2fb199810d49a4d8beec56718ba2593b665db9d52299a0f9e6e75416d73ff5c",
			2,
			ledger.DepTypeCode,
		),
	},
}

var testnetKnownScripts = map[KnownScript]ScriptInfo{
	KnownScriptSecp256k1Blake160: {
		CodeHash: mustHash("0x9bd7e06f3ecf4be0f2fcd2188b23f1b9fcc88e5d4b65a8637b17723bbda3cce8"),
		HashType: ledger.HashTypeType,
		CellDep: cellDep(
			"0xf8de3bb47d055cdf460d93a2a6e1b05f7432f9777c8c474abf4eec1d4aee5d37",
			0,
			ledger.DepTypeDepGroup,
		),
	},
	KnownScriptSecp256k1Multisig: {
		CodeHash: mustHash("0x5c5069eb0857efc65e1bca0c07df34c31663b3622fd3876c876320fc9634e2a8"),
		HashType: ledger.HashTypeType,
		CellDep: cellDep(
			"0xf8de3bb47d055cdf460d93a2a6e1b05f7432f9777c8c474abf4eec1d4aee5d37",
			1,
			ledger.DepTypeDepGroup,
		),
	},
	KnownScriptAnyoneCanPay: {
		CodeHash: mustHash("0x3419a1c09eb2567f6552ee7a8ecffd64155cffe0f1796e6e61ec088d740c1356"),
		HashType: ledger.HashTypeType,
		CellDep: cellDep(
			"0xec26b0f85ed839ece5f11c4c4e837ec359f5adc4420410f6453b1f6b60fb96a6",
			0,
			ledger.DepTypeDepGroup,
		),
	},
	KnownScriptTypeId: typeIdInfo,
	KnownScriptXUdt: {
		CodeHash: mustHash("0x25c29dc317811a6f6f3985a7a9ebc4838bd388d19d0feeecf0bcd60f6c0975bb"),
		HashType: ledger.HashTypeType,
		CellDep: cellDep(
			"0xbf6fb538763efec2a70a6a3dcb7242787087e1030c4e7d86585bc63a9d337f5f",
			0,
			ledger.DepTypeCode,
		),
	},
	KnownScriptOmniLock: {
		CodeHash: mustHash("0xf329effd1c475a2978453c8600e1eaf0bc2087ee093c3ee64cc96ec6847752cb"),
		HashType: ledger.HashTypeType,
		CellDep: cellDep(
			"0xec18bf0d857c981c3d1f4e17999b9b90c484b303378e94de1a57b0872f5d4602",
			0,
			ledger.DepTypeCode,
		),
	},
	KnownScriptNervosDao: {
		CodeHash: mustHash("0x82d76d1b75fe2fd9a27dfbaa65a039221a380d76c926f378d3f81cf3e7e13f2e"),
		HashType: ledger.HashTypeType,
		CellDep: cellDep(
			"0x8f8c79eb6671709633fe6a46de93c0fedc9c1b8a6527a18d3983879542635c9f",
			2,
			ledger.DepTypeCode,
		),
	},
}
