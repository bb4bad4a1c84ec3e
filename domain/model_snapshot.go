package domain

import (
	"time"

	"github.com/gogo/protobuf/proto"
)

// ModelSnapshot is the persisted form of a fitted term-space model.
//
// Only derived aggregates are stored.  Matrices are flattened row-major:
// WordFrequency and Tfidf are NumTerms x NumDocuments, TermLoadings is
// NumTerms x Rank and DocumentLoadings is Rank x NumDocuments.
type ModelSnapshot struct {
	Terms            []string  `protobuf:"bytes,1,rep,name=terms,proto3" json:"terms,omitempty"`
	PackageNames     []string  `protobuf:"bytes,2,rep,name=package_names,json=packageNames,proto3" json:"package_names,omitempty"`
	PackageRefs      []string  `protobuf:"bytes,3,rep,name=package_refs,json=packageRefs,proto3" json:"package_refs,omitempty"`
	GlobalWeights    []float64 `protobuf:"fixed64,4,rep,packed,name=global_weights,json=globalWeights,proto3" json:"global_weights,omitempty"`
	WordFrequency    []float64 `protobuf:"fixed64,5,rep,packed,name=word_frequency,json=wordFrequency,proto3" json:"word_frequency,omitempty"`
	Tfidf            []float64 `protobuf:"fixed64,6,rep,packed,name=tfidf,proto3" json:"tfidf,omitempty"`
	NumTerms         int32     `protobuf:"varint,7,opt,name=num_terms,json=numTerms,proto3" json:"num_terms,omitempty"`
	NumDocuments     int32     `protobuf:"varint,8,opt,name=num_documents,json=numDocuments,proto3" json:"num_documents,omitempty"`
	Projection       int32     `protobuf:"varint,9,opt,name=projection,proto3" json:"projection,omitempty"`
	Rank             int32     `protobuf:"varint,10,opt,name=rank,proto3" json:"rank,omitempty"`
	TermLoadings     []float64 `protobuf:"fixed64,11,rep,packed,name=term_loadings,json=termLoadings,proto3" json:"term_loadings,omitempty"`
	SingularValues   []float64 `protobuf:"fixed64,12,rep,packed,name=singular_values,json=singularValues,proto3" json:"singular_values,omitempty"`
	DocumentLoadings []float64 `protobuf:"fixed64,13,rep,packed,name=document_loadings,json=documentLoadings,proto3" json:"document_loadings,omitempty"`
	MaxFeatures      int32     `protobuf:"varint,14,opt,name=max_features,json=maxFeatures,proto3" json:"max_features,omitempty"`
	FittedAt         int64     `protobuf:"varint,15,opt,name=fitted_at,json=fittedAt,proto3" json:"fitted_at,omitempty"`
}

func (snap *ModelSnapshot) Reset()         { *snap = ModelSnapshot{} }
func (snap *ModelSnapshot) String() string { return proto.CompactTextString(snap) }
func (*ModelSnapshot) ProtoMessage()       {}

// FittedTime returns FittedAt as a time.Time.
func (snap *ModelSnapshot) FittedTime() time.Time {
	return time.Unix(0, snap.FittedAt)
}
