package utils

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"attachkeeper/modules/kit/errx"
)

const (
	// 2024-01-01 00:00:00 UTC，单位毫秒
	snowflakeEpochMilli int64 = 1704067200000

	nodeBits uint8 = 10
	seqBits  uint8 = 12

	maxNodeID int64 = -1 ^ (-1 << nodeBits)
	maxSeq    int64 = -1 ^ (-1 << seqBits)

	nodeShift uint8 = seqBits
	timeShift uint8 = nodeBits + seqBits
)

// Snowflake 生成记录身份：41 位毫秒时间戳 + 10 位节点 + 12 位序列，单调递增。
type Snowflake struct {
	mu     sync.Mutex
	nodeID int64
	lastTS int64
	seq    int64
}

func NewSnowflake(nodeID int64) (*Snowflake, error) {
	if nodeID < 0 || nodeID > maxNodeID {
		return nil, errx.ErrInvalidInput.WithMsg("snowflake 节点号越界").WithData("node_id", nodeID).WithData("max", maxNodeID)
	}
	return &Snowflake{nodeID: nodeID}, nil
}

func (s *Snowflake) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := time.Now().UnixMilli()
	if ts < s.lastTS {
		// 时钟回拨时不回退，保持单调递增。
		ts = s.lastTS
	}

	if ts == s.lastTS {
		s.seq = (s.seq + 1) & maxSeq
		if s.seq == 0 {
			ts = waitNextMillisecond(s.lastTS)
		}
	} else {
		s.seq = 0
	}

	s.lastTS = ts
	return ((ts - snowflakeEpochMilli) << timeShift) | (s.nodeID << nodeShift) | s.seq
}

func waitNextMillisecond(lastTS int64) int64 {
	ts := time.Now().UnixMilli()
	for ts <= lastTS {
		ts = time.Now().UnixMilli()
	}
	return ts
}

// NextIDString 返回十进制字符串形式的 id，直接用作记录身份和文件名后缀。
func (s *Snowflake) NextIDString() string {
	return strconv.FormatInt(s.NextID(), 10)
}

// NodeIDFromEnv 读取 ATTACHD_NODE_ID，未设置时返回 fallback。
func NodeIDFromEnv(fallback int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv("ATTACHD_NODE_ID"))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errx.ErrInvalidInput.WithMsg("ATTACHD_NODE_ID 不是整数").WithData("value", raw).WithCause(err)
	}
	return parsed, nil
}
