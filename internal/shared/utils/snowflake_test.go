package utils

import (
	"errors"
	"strconv"
	"sync"
	"testing"

	"attachkeeper/modules/kit/errx"
)

func TestSnowflake_并发生成不重复且递增(t *testing.T) {
	s, err := NewSnowflake(3)
	if err != nil {
		t.Fatalf("err=%v", err)
	}

	var (
		mu   sync.Mutex
		seen = make(map[int64]struct{})
		wg   sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prev := int64(0)
			for j := 0; j < 1000; j++ {
				id := s.NextID()
				if id <= prev {
					t.Errorf("同一 goroutine 内应递增 prev=%d id=%d", prev, id)
					return
				}
				prev = id
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if len(seen) != 8000 {
		t.Fatalf("期望 8000 个不同 id，got=%d", len(seen))
	}
}

func TestSnowflake_节点号校验(t *testing.T) {
	if _, err := NewSnowflake(-1); !errors.Is(err, errx.ErrInvalidInput) {
		t.Fatalf("期望 INVALID_INPUT，got=%v", err)
	}
	if _, err := NewSnowflake(maxNodeID + 1); err == nil {
		t.Fatalf("越界应报错")
	}
}

func TestSnowflake_字符串id是十进制(t *testing.T) {
	s, _ := NewSnowflake(1)

	a, b := s.NextIDString(), s.NextIDString()
	na, err := strconv.ParseInt(a, 10, 64)
	if err != nil {
		t.Fatalf("期望十进制整数 got=%q err=%v", a, err)
	}
	nb, _ := strconv.ParseInt(b, 10, 64)
	if nb <= na {
		t.Fatalf("期望递增 a=%s b=%s", a, b)
	}
}

func TestNodeIDFromEnv(t *testing.T) {
	t.Setenv("ATTACHD_NODE_ID", "")
	if id, err := NodeIDFromEnv(7); err != nil || id != 7 {
		t.Fatalf("未设置时用 fallback got=%d err=%v", id, err)
	}
	t.Setenv("ATTACHD_NODE_ID", "12")
	if id, err := NodeIDFromEnv(7); err != nil || id != 12 {
		t.Fatalf("got=%d err=%v", id, err)
	}
	t.Setenv("ATTACHD_NODE_ID", "x")
	if _, err := NodeIDFromEnv(7); err == nil {
		t.Fatalf("非整数应报错")
	}
}
