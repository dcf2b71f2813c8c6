// Package spvtypes defines the SPV bridge's wire-level value types and its
// three disjoint error taxonomies, mirroring the "host chain returns an i8
// status code" convention described by the bridge's external interface.
package spvtypes

import "fmt"

// BootstrapError enumerates the ways Bootstrap can fail. Code 0 is reserved
// for success; it is never constructed as an error value. Numbering follows
// the bridge's external interface table exactly (deliberately sparse).
type BootstrapError int8

const (
	BootstrapOK          BootstrapError = 0
	BootstrapDecodeHeader BootstrapError = 1
	BootstrapHeight       BootstrapError = 9
	BootstrapPow          BootstrapError = 10
	BootstrapUnreachable  BootstrapError = 0x20
)

func (e BootstrapError) Code() int8 { return int8(e) }

func (e BootstrapError) Error() string {
	switch e {
	case BootstrapOK:
		return "bootstrap: ok"
	case BootstrapDecodeHeader:
		return "bootstrap: could not decode header"
	case BootstrapHeight:
		return "bootstrap: height is not a retarget-epoch boundary"
	case BootstrapPow:
		return "bootstrap: header does not satisfy its own proof-of-work target"
	case BootstrapUnreachable:
		return "bootstrap: unreachable"
	default:
		return fmt.Sprintf("bootstrap: unknown error code %d", int8(e))
	}
}

// UpdateError enumerates the ways VerifyNewClient can fail.
type UpdateError int8

const (
	UpdateOK                     UpdateError = 0
	UpdateDecodeHeader            UpdateError = 1
	UpdateDecodeTargetAdjustInfo  UpdateError = 2
	UpdateEmptyHeaders            UpdateError = 9
	UpdateUncontinuousHeaders     UpdateError = 10
	UpdateDifficulty              UpdateError = 11
	UpdatePow                     UpdateError = 12
	UpdateMmr                     UpdateError = 17
	UpdateHeadersMmrProof         UpdateError = 18
	UpdateClientId                UpdateError = 25
	UpdateClientTipBlockHash      UpdateError = 26
	UpdateClientMinimalHeight     UpdateError = 27
	UpdateClientMaximalHeight     UpdateError = 28
	UpdateClientTargetAdjustInfo  UpdateError = 29
	// UpdateFlags is a supplement beyond spec.md's table: the flags byte
	// carries a reserved/unrecognised combination (see bitcoin.ChainTypeFromFlags).
	UpdateFlags       UpdateError = 30
	UpdateUnreachable UpdateError = 0x20
)

func (e UpdateError) Code() int8 { return int8(e) }

func (e UpdateError) Error() string {
	switch e {
	case UpdateOK:
		return "verify_new_client: ok"
	case UpdateDecodeHeader:
		return "verify_new_client: could not decode header"
	case UpdateDecodeTargetAdjustInfo:
		return "verify_new_client: could not decode target_adjust_info"
	case UpdateEmptyHeaders:
		return "verify_new_client: update carries no headers"
	case UpdateUncontinuousHeaders:
		return "verify_new_client: header does not extend the running tip"
	case UpdateDifficulty:
		return "verify_new_client: header bits do not match the expected retarget"
	case UpdatePow:
		return "verify_new_client: header hash does not satisfy its target"
	case UpdateMmr:
		return "verify_new_client: mmr structural error"
	case UpdateHeadersMmrProof:
		return "verify_new_client: headers mmr extension proof does not reach the new root"
	case UpdateClientId:
		return "verify_new_client: new client id does not match old client id"
	case UpdateClientTipBlockHash:
		return "verify_new_client: new client tip_block_hash does not match recomputed tip"
	case UpdateClientMinimalHeight:
		return "verify_new_client: new client min_height does not match old min_height"
	case UpdateClientMaximalHeight:
		return "verify_new_client: new client max_height does not match old max_height + len(headers)"
	case UpdateClientTargetAdjustInfo:
		return "verify_new_client: new client target_adjust_info does not match recomputed value"
	case UpdateFlags:
		return "verify_new_client: flags byte is invalid"
	case UpdateUnreachable:
		return "verify_new_client: unreachable"
	default:
		return fmt.Sprintf("verify_new_client: unknown error code %d", int8(e))
	}
}

// VerifyTxError enumerates the ways VerifyTransaction can fail. Numbering
// follows the bridge's external interface table exactly (deliberately
// sparse/non-contiguous in places).
type VerifyTxError int8

const (
	VerifyTxOK                      VerifyTxError = 0
	VerifyTxDecodeTransaction        VerifyTxError = 1
	VerifyTxDecodeTxOutProof         VerifyTxError = 2
	VerifyTxTransactionUnconfirmed   VerifyTxError = 9
	VerifyTxTransactionTooOld        VerifyTxError = 10
	VerifyTxTransactionTooNew        VerifyTxError = 11
	VerifyTxTxOutProofIsInvalid      VerifyTxError = 17
	VerifyTxTxOutProofInvalidTxIndex VerifyTxError = 18
	VerifyTxTxOutProofInvalidTxId    VerifyTxError = 19
	VerifyTxHeaderMmrProof           VerifyTxError = 25
	VerifyTxUnreachable              VerifyTxError = 0x20
)

func (e VerifyTxError) Code() int8 { return int8(e) }

func (e VerifyTxError) Error() string {
	switch e {
	case VerifyTxOK:
		return "verify_transaction: ok"
	case VerifyTxDecodeTransaction:
		return "verify_transaction: could not decode transaction"
	case VerifyTxDecodeTxOutProof:
		return "verify_transaction: could not decode txout proof"
	case VerifyTxTransactionUnconfirmed:
		return "verify_transaction: transaction does not yet have enough confirmations"
	case VerifyTxTransactionTooOld:
		return "verify_transaction: transaction height precedes the client's min height"
	case VerifyTxTransactionTooNew:
		return "verify_transaction: transaction height exceeds the client's max height"
	case VerifyTxTxOutProofIsInvalid:
		return "verify_transaction: txout merkle proof does not reconstruct the header's merkle root"
	case VerifyTxTxOutProofInvalidTxIndex:
		return "verify_transaction: txout proof's tx index does not match the transaction"
	case VerifyTxTxOutProofInvalidTxId:
		return "verify_transaction: txout proof's extracted txid does not match the transaction"
	case VerifyTxHeaderMmrProof:
		return "verify_transaction: header mmr proof does not root in the client's mmr"
	case VerifyTxUnreachable:
		return "verify_transaction: unreachable"
	default:
		return fmt.Sprintf("verify_transaction: unknown error code %d", int8(e))
	}
}
