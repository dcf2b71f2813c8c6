package prover

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	btcdwire "github.com/btcsuite/btcd/wire"

	"github.com/nervosnetwork/btcspv/bitcoin"
	"github.com/nervosnetwork/btcspv/hash32"
	"github.com/nervosnetwork/btcspv/mmr"
	"github.com/nervosnetwork/btcspv/spvclient"
	"github.com/nervosnetwork/btcspv/spvtypes"
	"github.com/nervosnetwork/btcspv/store"
	"github.com/nervosnetwork/btcspv/wire"
)

const easyBits = 0x207fffff

func mineHeader(t *testing.T, prev hash32.T, timestamp, bits uint32) []byte {
	t.Helper()
	return mineHeaderWithRoot(t, prev, hash32.Nil, timestamp, bits)
}

func mineHeaderWithRoot(t *testing.T, prev, merkleRoot hash32.T, timestamp, bits uint32) []byte {
	t.Helper()
	target := bitcoin.TargetFromCompact(bits)
	for nonce := uint32(0); ; nonce++ {
		hdr := wire.HeaderFromParts(1, prev, merkleRoot, timestamp, bits, nonce)
		if bitcoin.CheckProofOfWork(hdr.Hash(), target) {
			raw, err := hdr.MarshalBinary()
			if err != nil {
				t.Fatalf("marshal header: %v", err)
			}
			return raw
		}
		if nonce == 1<<20 {
			t.Fatalf("failed to mine header")
		}
	}
}

func TestServiceBootstrapUpdateAndVerify(t *testing.T) {
	mem := store.NewMemStore()
	svc := NewService(mem, bitcoin.ChainMainnet)

	genesis := mineHeader(t, hash32.Nil, 1_600_000_000, easyBits)
	client, errCode := svc.Bootstrap(0, genesis)
	if errCode != spvtypes.BootstrapOK {
		t.Fatalf("bootstrap failed: %v", errCode)
	}

	genesisHdr := wire.NewHeader()
	if _, err := genesisHdr.ParseFromSlice(genesis); err != nil {
		t.Fatalf("parse genesis: %v", err)
	}

	next := mineHeader(t, genesisHdr.Hash(), 1_600_000_600, easyBits)
	update, newClient, err := svc.Update([][]byte{next})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	errCode2 := spvclient.VerifyNewClient(client, newClient, *update, 0)
	if errCode2 != spvtypes.UpdateOK {
		t.Fatalf("verifier rejected prover-generated update: %v", errCode2)
	}

	if svc.MaxHeight() != 1 {
		t.Fatalf("expected tracked max height 1, got %d", svc.MaxHeight())
	}

	proof, err := svc.GenerateHeaderProof(0)
	if err != nil {
		t.Fatalf("generate header proof: %v", err)
	}
	if proof.LeafPos != 0 {
		t.Fatalf("expected genesis leaf at position 0, got %d", proof.LeafPos)
	}
}

// TestServiceUpdateWithMultiplePeaksVerifies drives the tracked range past a
// single perfect subtree (11 total leaves, binary 1011 -> 3 peaks, matching
// mmr_test.go's TestAccumulatorPushAndRoot) through the public
// Service.Update/spvclient.VerifyNewClient path, so a regression in bagging
// more than one peak (e.g. a wrong MergePeaks argument order) is caught
// end-to-end and not just by the MMR-internal test.
func TestServiceUpdateWithMultiplePeaksVerifies(t *testing.T) {
	mem := store.NewMemStore()
	svc := NewService(mem, bitcoin.ChainMainnet)

	genesis := mineHeader(t, hash32.Nil, 1_600_000_000, easyBits)
	client, errCode := svc.Bootstrap(0, genesis)
	if errCode != spvtypes.BootstrapOK {
		t.Fatalf("bootstrap failed: %v", errCode)
	}

	genesisHdr := wire.NewHeader()
	if _, err := genesisHdr.ParseFromSlice(genesis); err != nil {
		t.Fatalf("parse genesis: %v", err)
	}
	tip := genesisHdr.Hash()

	const extraLeaves = 10 // 1 (genesis) + 10 = 11 total leaves
	headers := make([][]byte, 0, extraLeaves)
	for i := 0; i < extraLeaves; i++ {
		raw := mineHeader(t, tip, 1_600_000_000+uint32(i+1)*600, easyBits)
		hdr := wire.NewHeader()
		if _, err := hdr.ParseFromSlice(raw); err != nil {
			t.Fatalf("parse header %d: %v", i, err)
		}
		tip = hdr.Hash()
		headers = append(headers, raw)
	}

	update, newClient, err := svc.Update(headers)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if svc.MaxHeight() != uint64(extraLeaves) {
		t.Fatalf("expected tracked max height %d, got %d", extraLeaves, svc.MaxHeight())
	}

	errCode2 := spvclient.VerifyNewClient(client, newClient, *update, 0)
	if errCode2 != spvtypes.UpdateOK {
		t.Fatalf("verifier rejected prover-generated update over 11 leaves (3 peaks): %v", errCode2)
	}

	for h := uint64(0); h <= uint64(extraLeaves); h++ {
		proof, err := svc.GenerateHeaderProof(h)
		if err != nil {
			t.Fatalf("generate header proof at height %d: %v", h, err)
		}
		ok, err := mmr.VerifyMembership(newClient.HeadersMMRRoot, mustLeafDigest(t, mem, proof.LeafPos), proof)
		if err != nil || !ok {
			t.Fatalf("membership verification failed at height %d: ok=%v err=%v", h, ok, err)
		}
	}
}

func mustLeafDigest(t *testing.T, s Store, pos uint64) mmr.Digest {
	t.Helper()
	d, err := s.Get(pos)
	if err != nil {
		t.Fatalf("reading leaf at pos %d: %v", pos, err)
	}
	return d
}

func TestServiceRollbackToDiscardsTail(t *testing.T) {
	mem := store.NewMemStore()
	svc := NewService(mem, bitcoin.ChainMainnet)

	genesis := mineHeader(t, hash32.Nil, 1_600_000_000, easyBits)
	client, errCode := svc.Bootstrap(0, genesis)
	if errCode != spvtypes.BootstrapOK {
		t.Fatalf("bootstrap failed: %v", errCode)
	}

	genesisHdr := wire.NewHeader()
	if _, err := genesisHdr.ParseFromSlice(genesis); err != nil {
		t.Fatalf("parse genesis: %v", err)
	}
	next := mineHeader(t, genesisHdr.Hash(), 1_600_000_600, easyBits)
	if _, _, err := svc.Update([][]byte{next}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if svc.MaxHeight() != 1 {
		t.Fatalf("expected max height 1 before rollback")
	}

	if err := svc.RollbackTo(client); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}
	if svc.MaxHeight() != 0 {
		t.Fatalf("expected max height 0 after rollback, got %d", svc.MaxHeight())
	}
	if mem.Len() != 1 {
		t.Fatalf("expected store truncated to a single leaf, got len %d", mem.Len())
	}
}

// TestServiceGenerateAndVerifyTransactionProof drives the whole witness
// round trip a host-chain verifier actually depends on: BlockProofGenerator
// builds the BIP37 MerkleBlock side, Service.GenerateHeaderProof builds the
// MMR side, and spvclient.VerifyTransaction checks both together.
func TestServiceGenerateAndVerifyTransactionProof(t *testing.T) {
	mem := store.NewMemStore()
	svc := NewService(mem, bitcoin.ChainMainnet)

	coinbase := btcdwire.NewMsgTx(btcdwire.TxVersion)
	coinbase.AddTxIn(&btcdwire.TxIn{
		PreviousOutPoint: btcdwire.OutPoint{Index: 0xffffffff},
		SignatureScript:  []byte{0x00},
		Sequence:         0xffffffff,
	})
	coinbase.AddTxOut(&btcdwire.TxOut{Value: 50 * 1e8, PkScript: []byte{0x6a}})
	txid := coinbase.TxHash()
	// with a single transaction in the block, the merkle root is the
	// transaction's own hash (no sibling to combine with).
	merkleRoot := hash32.T(txid)

	const ts = 1_600_000_000
	genesis := mineHeaderWithRoot(t, hash32.Nil, merkleRoot, ts, easyBits)
	client, errCode := svc.Bootstrap(0, genesis)
	if errCode != spvtypes.BootstrapOK {
		t.Fatalf("bootstrap failed: %v", errCode)
	}

	genesisHdr := wire.NewHeader()
	if _, err := genesisHdr.ParseFromSlice(genesis); err != nil {
		t.Fatalf("parse genesis: %v", err)
	}

	block := &btcdwire.MsgBlock{
		Header: btcdwire.BlockHeader{
			Version:    genesisHdr.Version,
			PrevBlock:  chainhash.Hash(genesisHdr.HashPrevBlock),
			MerkleRoot: chainhash.Hash(genesisHdr.HashMerkleRoot),
			Timestamp:  time.Unix(int64(genesisHdr.Time), 0),
			Bits:       genesisHdr.Bits,
			Nonce:      genesisHdr.Nonce,
		},
		Transactions: []*btcdwire.MsgTx{coinbase},
	}

	gen := BlockProofGenerator{}
	txOutProof, err := gen.GenerateTxOutProofViaIndexes(block, []uint32{0})
	if err != nil {
		t.Fatalf("generate txout proof: %v", err)
	}

	headerProof, err := svc.GenerateHeaderProof(0)
	if err != nil {
		t.Fatalf("generate header proof: %v", err)
	}

	txProof := spvtypes.TransactionProof{
		Height:           0,
		TxIndex:          0,
		TransactionProof: txOutProof,
		HeaderProof:      headerProof,
	}

	recovered, verr := VerifyTransaction(client, hash32.T(txid), txProof, 0)
	if verr != spvtypes.VerifyTxOK {
		t.Fatalf("VerifyTransaction failed: %v", verr)
	}
	if recovered.HashMerkleRoot != merkleRoot {
		t.Fatalf("recovered header has wrong merkle root: %x", recovered.HashMerkleRoot)
	}

	if _, verr := VerifyTransaction(client, hash32.T(txid), txProof, 1); verr != spvtypes.VerifyTxTransactionUnconfirmed {
		t.Fatalf("expected unconfirmed error demanding 1 confirmation over the tip, got %v", verr)
	}
}
