package repository

import "encoding/binary"

// userKey 用户 ID 编码为 8 字节大端序
func userKey(userID uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], userID)
	return buf[:]
}

// parseUserKey 解析用户键；不足 8 字节时低位补零，多余字节忽略
func parseUserKey(key []byte) uint64 {
	var buf [8]byte
	copy(buf[:], key)
	return binary.BigEndian.Uint64(buf[:])
}
