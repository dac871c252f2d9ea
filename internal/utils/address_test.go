package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksumAddress(t *testing.T) {
	// Vectors from EIP-55.
	vectors := []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
	}
	for _, v := range vectors {
		t.Run(v, func(t *testing.T) {
			assert.Equal(t, v, ChecksumAddress(v))
			assert.True(t, IsValidAddress(v))
		})
	}
}

func TestIsValidAddress(t *testing.T) {
	assert.True(t, IsValidAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"), "lowercase is accepted")
	assert.False(t, IsValidAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAeD"), "bad checksum")
	assert.False(t, IsValidAddress("5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"), "missing prefix")
	assert.False(t, IsValidAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1bea"), "too short")
	assert.False(t, IsValidAddress("0xzzaeb6053f3e94c9b9a09f33669435e7ef1beaed"), "not hex")
}

func TestNormalizeAddress(t *testing.T) {
	got, ok := NormalizeAddress(" 0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed ")
	assert.True(t, ok)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", got)

	_, ok = NormalizeAddress("not-an-address")
	assert.False(t, ok)
}

func TestAddressFromHash(t *testing.T) {
	digest := Keccak256([]byte("campaign-1"))
	addr := AddressFromHash(digest)
	assert.True(t, IsValidAddress(addr))
	assert.Equal(t, addr, AddressFromHash(Keccak256([]byte("campaign-1"))))
	assert.Len(t, HexHash(digest), 66)
}
