package types

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/base58"
)

// Identity is a 32 byte account, asset or authority key.
type Identity [32]byte

func (id Identity) String() string {
	return base58.Encode(id[:])
}

func (id Identity) IsZero() bool {
	return id == Identity{}
}

func (id Identity) Bytes() []byte {
	return id[:]
}

func ParseIdentity(s string) (Identity, error) {
	var id Identity
	bz := base58.Decode(s)
	if len(bz) != len(id) {
		return id, fmt.Errorf("wrong identity length: expected(%d), got(%d)", len(id), len(bz))
	}
	copy(id[:], bz)
	return id, nil
}

func MustParseIdentity(s string) Identity {
	id, err := ParseIdentity(s)
	if err != nil {
		panic(err)
	}
	return id
}

const addrVer = 0x01

// EncodeAddress renders a shielded receiving key as a checksummed string.
func EncodeAddress(payload []byte) string {
	return "zp" + base58.CheckEncode(payload, addrVer)
}

func DecodeAddress(addr string) ([]byte, error) {
	if !strings.HasPrefix(addr, "zp") {
		if len(addr) > 2 {
			addr = addr[:2]
		}
		return nil, fmt.Errorf("wrong prefix: got(%s)", addr)
	}
	bz, ver, err := base58.CheckDecode(addr[2:])
	if err != nil {
		return nil, err
	}
	if ver != addrVer {
		return nil, fmt.Errorf("wrong version: expected(%d), got(%d)", addrVer, ver)
	}
	return bz, nil
}
