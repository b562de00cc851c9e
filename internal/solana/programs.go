package solana

import "encoding/binary"

// System Program transfer instruction tag.
const systemTransferTag = 2

// SPL Token transfer instruction tag.
const tokenTransferTag = 3

// NewTransferInstruction builds a System Program lamport transfer.
func NewTransferInstruction(from, to PublicKey, lamports uint64) Instruction {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], systemTransferTag)
	binary.LittleEndian.PutUint64(data[4:12], lamports)

	return Instruction{
		ProgramID: MustPublicKey(SystemProgramID),
		Accounts: []AccountMeta{
			{Pubkey: from, Signer: true, Writable: true},
			{Pubkey: to, Writable: true},
		},
		Data: data,
	}
}

// NewTokenTransferInstruction builds an SPL Token transfer between token
// accounts; amount is in base units of the mint.
func NewTokenTransferInstruction(source, dest, owner PublicKey, amount uint64) Instruction {
	data := make([]byte, 9)
	data[0] = tokenTransferTag
	binary.LittleEndian.PutUint64(data[1:9], amount)

	return Instruction{
		ProgramID: MustPublicKey(TokenProgramID),
		Accounts: []AccountMeta{
			{Pubkey: source, Writable: true},
			{Pubkey: dest, Writable: true},
			{Pubkey: owner, Signer: true},
		},
		Data: data,
	}
}

// NewCreateATAInstruction builds an Associated Token Account creation
// instruction, funded by the payer.
func NewCreateATAInstruction(payer, ata, owner, mint PublicKey) Instruction {
	return Instruction{
		ProgramID: MustPublicKey(AssociatedTokenProgramID),
		Accounts: []AccountMeta{
			{Pubkey: payer, Signer: true, Writable: true},
			{Pubkey: ata, Writable: true},
			{Pubkey: owner},
			{Pubkey: mint},
			{Pubkey: MustPublicKey(SystemProgramID)},
			{Pubkey: MustPublicKey(TokenProgramID)},
		},
		Data: nil,
	}
}
