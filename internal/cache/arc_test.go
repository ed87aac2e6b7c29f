package cache

import (
	"strconv"
	"testing"
)

func TestARCEvicts(t *testing.T) {
	t.Parallel()

	c, err := NewARC(4)
	if err != nil {
		t.Fatalf("new arc: %v", err)
	}

	for i := 0; i < 10; i++ {
		c.Add("viewer"+strconv.Itoa(i), i)
	}

	if c.Len() != 4 {
		t.Errorf("len: got %d, want 4", c.Len())
	}

	v, ok := c.Get("viewer9")
	if !ok || v.(int) != 9 {
		t.Errorf("get newest: got %v, %t", v, ok)
	}

	if _, ok := c.Get("viewer0"); ok {
		t.Errorf("oldest entry not evicted")
	}

	c.Add("viewer9", 90)
	if v, _ := c.Get("viewer9"); v.(int) != 90 || c.Len() != 4 {
		t.Errorf("replace entry: got %v, len %d", v, c.Len())
	}
}

func TestNewARCInvalidSize(t *testing.T) {
	t.Parallel()

	if _, err := NewARC(0); err == nil {
		t.Error("new arc of size 0 succeeded")
	}
}
