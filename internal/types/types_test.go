package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUrgencyRank(t *testing.T) {
	assert.Equal(t, 0, UrgencyUrgent.Rank())
	assert.Equal(t, 1, UrgencyNotUrgent.Rank())
	// An unset urgency schedules like not_urgent.
	assert.Equal(t, 1, Urgency("").Rank())
}

func TestItemValidate(t *testing.T) {
	item := &Item{ID: "a", Subject: "hi"}
	assert.NoError(t, item.Validate())

	assert.Error(t, (&Item{Subject: "hi"}).Validate())
	assert.Error(t, (&Item{ID: "a"}).Validate())
	assert.NoError(t, (&Item{ID: "a", Body: "text"}).Validate())
}

func TestExtractedInfoMerge(t *testing.T) {
	base := ExtractedInfo{"source": "import", "phones": []string{"111"}}
	fresh := ExtractedInfo{"phones": []string{"222"}, "emails": []string{"a@b.co"}}

	merged := base.Merge(fresh)

	assert.Equal(t, "import", merged["source"])
	assert.Equal(t, []string{"222"}, merged["phones"])
	assert.Equal(t, []string{"a@b.co"}, merged["emails"])
}

func TestExtractedInfoMergeNilReceiver(t *testing.T) {
	var base ExtractedInfo
	merged := base.Merge(ExtractedInfo{"k": "v"})
	assert.Equal(t, "v", merged["k"])
}
