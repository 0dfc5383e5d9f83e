package state

import (
	"encoding/hex"

	"stablemesh/crypto"
	"stablemesh/native/region"
)

var (
	positionPrefix   = []byte("protocol/position/")
	balancePrefix    = []byte("protocol/balance/")
	collateralPrefix = []byte("protocol/collateral/")
	oraclePrefix     = []byte("protocol/oracle/")
	vaultPrefix      = []byte("protocol/vault/")
	rewardPrefix     = []byte("protocol/reward/")
	operatorPrefix   = []byte("protocol/operator/")
	protocolStateKey = []byte("protocol/state")
	blockHeightKey   = []byte("protocol/height")
)

func addrPart(addr crypto.Address) string {
	return string(addr.Prefix()) + ":" + hex.EncodeToString(addr.Bytes())
}

func accountKey(prefix []byte, addr crypto.Address) []byte {
	part := addrPart(addr)
	buf := make([]byte, len(prefix)+len(part))
	copy(buf, prefix)
	copy(buf[len(prefix):], part)
	return buf
}

func accountRegionKey(prefix []byte, addr crypto.Address, r region.Region) []byte {
	part := addrPart(addr) + "/" + string(r)
	buf := make([]byte, len(prefix)+len(part))
	copy(buf, prefix)
	copy(buf[len(prefix):], part)
	return buf
}

func regionKey(prefix []byte, r region.Region) []byte {
	buf := make([]byte, len(prefix)+len(r))
	copy(buf, prefix)
	copy(buf[len(prefix):], string(r))
	return buf
}
