package db

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestBoltBackend(t *testing.T) {
	var (
		fileName = filepath.Join(os.TempDir(), "TestBoltBackend.bolt")
		cfg      = NewBoltConfig(fileName)
		be       = NewBoltBackend(cfg)
	)

	os.Remove(fileName)

	if err := be.Open(); err != nil {
		t.Fatal(err)
	}

	defer func() {
		if err := be.Close(); err != nil {
			t.Error(err)
		}
		if err := os.Remove(fileName); err != nil {
			t.Error(err)
		}
	}()

	testBackend(t, be)
}

// testBackend exercises the Backend contract.  Shared by every backend
// implementation's tests.
func testBackend(t *testing.T, be Backend) {
	const table = TablePackages

	if err := be.Drop(table); err != nil {
		t.Fatal(err)
	}

	if _, err := be.Get(table, []byte("does-not-exist")); err != ErrKeyNotFound {
		t.Errorf("Expected err=%s but actual=%s", ErrKeyNotFound, err)
	}
	if _, err := be.Get("no-such-table", []byte("x")); err != ErrKeyNotFound {
		t.Errorf("Expected err=%s for missing table but actual=%s", ErrKeyNotFound, err)
	}

	if err := be.Put(table, []byte("hello"), []byte("world")); err != nil {
		t.Error(err)
	}
	if err := be.Put(table, []byte("hello"), []byte("again")); err != nil {
		t.Error(err)
	}

	v, err := be.Get(table, []byte("hello"))
	if err != nil {
		t.Error(err)
	}
	if expected, actual := "again", string(v); actual != expected {
		t.Errorf("Retrieved value did not match inserted value, expected=%v but actual=%v", expected, actual)
	}

	// Test iter.
	for _, n := range []int{3, 1, 2} {
		if err := be.Put(table, []byte(fmt.Sprintf("hello%v", n)), []byte(fmt.Sprintf("world%v", n))); err != nil {
			t.Error(err)
		}
	}

	if expected, actual := 4, mustLen(t, be, table); actual != expected {
		t.Errorf("Expected len=%v but actual=%v", expected, actual)
	}

	keys := []string{}
	if err := be.EachRow(table, func(k []byte, _ []byte) {
		keys = append(keys, string(k))
	}); err != nil {
		t.Error(err)
	}
	if expected, actual := []string{"hello", "hello1", "hello2", "hello3"}, keys; !reflect.DeepEqual(actual, expected) {
		t.Errorf("Expected keys=%v but actual=%v", expected, actual)
	}

	n := 0
	if err := be.EachRowWithBreak(table, func(_ []byte, _ []byte) bool {
		n++
		return n < 2
	}); err != nil {
		t.Error(err)
	}
	if expected, actual := 2, n; actual != expected {
		t.Errorf("Expected iteration to stop after %v rows but actual=%v", expected, actual)
	}

	if err := be.Delete(table, []byte("hello1"), []byte("hello2")); err != nil {
		t.Error(err)
	}
	if expected, actual := 2, mustLen(t, be, table); actual != expected {
		t.Errorf("Expected len=%v after delete but actual=%v", expected, actual)
	}

	if err := be.Drop(table); err != nil {
		t.Error(err)
	}
	if expected, actual := 0, mustLen(t, be, table); actual != expected {
		t.Errorf("Expected len=%v after drop but actual=%v", expected, actual)
	}
	if err := be.Put(table, []byte("after-drop"), []byte("ok")); err != nil {
		t.Errorf("Expected table to be usable after drop but err=%s", err)
	}
}

func mustLen(t *testing.T, be Backend, table string) int {
	n, err := be.Len(table)
	if err != nil {
		t.Fatal(err)
	}
	return n
}
