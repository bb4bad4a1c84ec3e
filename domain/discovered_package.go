package domain

import (
	"time"

	"github.com/gogo/protobuf/proto"
)

// DiscoveredPackage is a package found in a package listing which has a
// GitHub source repository.
type DiscoveredPackage struct {
	Name         string `protobuf:"bytes,1,opt,name=name,proto3" json:"name"`
	Repo         string `protobuf:"bytes,2,opt,name=repo,proto3" json:"repo"` // GitHub "owner/repo" short name.
	URL          string `protobuf:"bytes,3,opt,name=url,proto3" json:"url,omitempty"`
	Source       string `protobuf:"bytes,4,opt,name=source,proto3" json:"source,omitempty"`
	DiscoveredAt int64  `protobuf:"varint,5,opt,name=discovered_at,json=discoveredAt,proto3" json:"discovered_at,omitempty"`
}

func (dp *DiscoveredPackage) Reset()         { *dp = DiscoveredPackage{} }
func (dp *DiscoveredPackage) String() string { return proto.CompactTextString(dp) }
func (*DiscoveredPackage) ProtoMessage()     {}

func NewDiscoveredPackage(name string, repo string, source ...string) *DiscoveredPackage {
	if len(source) == 0 {
		source = []string{""}
	}

	dp := &DiscoveredPackage{
		Name:         name,
		Repo:         repo,
		Source:       source[0],
		DiscoveredAt: time.Now().UnixNano(),
	}

	return dp
}

// RepoURL returns the package's GitHub clone URL.
func (dp *DiscoveredPackage) RepoURL() string {
	return "https://github.com/" + dp.Repo + ".git"
}
