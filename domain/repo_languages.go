package domain

import (
	"sort"
	"time"

	"github.com/gogo/protobuf/proto"
)

// RepoLanguages is a cached per-language byte count breakdown of a GitHub
// repository.  Languages[i] has Bytes[i] bytes of code.
type RepoLanguages struct {
	Repo      string   `protobuf:"bytes,1,opt,name=repo,proto3" json:"repo"`
	Languages []string `protobuf:"bytes,2,rep,name=languages,proto3" json:"languages,omitempty"`
	Bytes     []int64  `protobuf:"varint,3,rep,packed,name=bytes,proto3" json:"bytes,omitempty"`
	Found     bool     `protobuf:"varint,4,opt,name=found,proto3" json:"found"`
	FetchedAt int64    `protobuf:"varint,5,opt,name=fetched_at,json=fetchedAt,proto3" json:"fetched_at,omitempty"`
}

func (rl *RepoLanguages) Reset()         { *rl = RepoLanguages{} }
func (rl *RepoLanguages) String() string { return proto.CompactTextString(rl) }
func (*RepoLanguages) ProtoMessage()     {}

// NewRepoLanguages builds a cache entry from a language -> bytes map.  A nil
// map marks a repository which could not be found.
func NewRepoLanguages(repo string, langs map[string]int64) *RepoLanguages {
	rl := &RepoLanguages{
		Repo:      repo,
		Languages: []string{},
		Bytes:     []int64{},
		Found:     langs != nil,
		FetchedAt: time.Now().UnixNano(),
	}
	for lang := range langs {
		rl.Languages = append(rl.Languages, lang)
	}
	sort.Strings(rl.Languages)
	for _, lang := range rl.Languages {
		rl.Bytes = append(rl.Bytes, langs[lang])
	}
	return rl
}

// Map returns the language -> bytes breakdown, or nil when the repository
// was not found.
func (rl *RepoLanguages) Map() map[string]int64 {
	if !rl.Found {
		return nil
	}
	m := make(map[string]int64, len(rl.Languages))
	for i, lang := range rl.Languages {
		if i < len(rl.Bytes) {
			m[lang] = rl.Bytes[i]
		}
	}
	return m
}
