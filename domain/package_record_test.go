package domain

import (
	"reflect"
	"testing"

	"github.com/gogo/protobuf/proto"
)

func TestRecordBuilder(t *testing.T) {
	rb := NewRecordBuilder("left-pad", "https://github.com/stevemao/left-pad.git")
	for _, token := range []string{"var", "pad", "=", "var", "pad", "var"} {
		rb.Add(token)
	}
	rec := rb.Record()

	if expected, actual := []string{"var", "pad", "="}, rec.Terms; !reflect.DeepEqual(actual, expected) {
		t.Errorf("Expected terms=%v but actual=%v", expected, actual)
	}
	if expected, actual := []int64{3, 2, 1}, rec.Counts; !reflect.DeepEqual(actual, expected) {
		t.Errorf("Expected counts=%v but actual=%v", expected, actual)
	}
	if expected, actual := int64(6), rec.Total(); actual != expected {
		t.Errorf("Expected total=%v but actual=%v", expected, actual)
	}
	if expected, actual := map[string]int{"var": 3, "pad": 2, "=": 1}, rec.TermCounts(); !reflect.DeepEqual(actual, expected) {
		t.Errorf("Expected term counts=%v but actual=%v", expected, actual)
	}
}

func TestPackageRecordProtoRoundTrip(t *testing.T) {
	rb := NewRecordBuilder("async", "caolan/async")
	rb.Add("function")
	rb.Add("callback")
	rb.Add("function")
	orig := rb.Record()

	bs, err := proto.Marshal(orig)
	if err != nil {
		t.Fatal(err)
	}
	rec := &PackageRecord{}
	if err := proto.Unmarshal(bs, rec); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rec, orig) {
		t.Errorf("Expected unmarshalled record=%v but actual=%v", orig, rec)
	}
	if expected, actual := orig.TokenizedAt, rec.TokenizedTime().UnixNano(); actual != expected {
		t.Errorf("Expected tokenized-at=%v but actual=%v", expected, actual)
	}
}
