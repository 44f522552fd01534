package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialIsChecking(t *testing.T) {
	s := Initial()
	assert.Equal(t, StatusChecking, s.Status)
	assert.True(t, s.IsLoading)
	assert.False(t, s.IsAuthenticated())
}

func TestBeginClearsPreviousError(t *testing.T) {
	s := Initial().Fail("invalid credentials")
	s = s.Begin()

	assert.Equal(t, StatusChecking, s.Status)
	assert.True(t, s.IsLoading)
	assert.Empty(t, s.LastError)
}

func TestSucceedInstallsIdentity(t *testing.T) {
	s := Initial().Begin().Succeed(User{ID: "u1", Email: "a@b.co"})

	assert.Equal(t, StatusAuthenticated, s.Status)
	assert.True(t, s.IsAuthenticated())
	assert.False(t, s.IsLoading)
	assert.Equal(t, "u1", s.Identity.ID)
}

func TestFailDropsIdentity(t *testing.T) {
	s := Initial().Succeed(User{ID: "u1"})
	s = s.Begin().Fail("profile load failed")

	assert.Equal(t, StatusError, s.Status)
	assert.False(t, s.IsAuthenticated())
	assert.False(t, s.IsLoading)
	assert.Equal(t, "profile load failed", s.LastError)
}

func TestErrorIsNotSticky(t *testing.T) {
	s := Initial().Fail("nope")
	s = s.Begin().Succeed(User{ID: "u1"})

	assert.True(t, s.IsAuthenticated())
	assert.Empty(t, s.LastError)
}

func TestSignOutAlwaysAnonymous(t *testing.T) {
	for _, start := range []State{
		Initial(),
		Initial().Succeed(User{ID: "u1"}),
		Initial().Fail("x"),
	} {
		s := start.SignOut()
		assert.Equal(t, StatusAnonymous, s.Status)
		assert.Nil(t, s.Identity)
		assert.False(t, s.IsLoading)
		assert.Empty(t, s.LastError)
	}
}

func TestMergePartialUpdate(t *testing.T) {
	s := Initial().Succeed(User{ID: "u1", Email: "a@b.co", DisplayName: "A"})

	phone := "+27110000000"
	s2 := s.Merge(UserPatch{Phone: &phone})

	assert.Equal(t, "+27110000000", s2.Identity.Phone)
	assert.Equal(t, "A", s2.Identity.DisplayName)
	// original identity untouched
	assert.Empty(t, s.Identity.Phone)
}

func TestMergeNoopWhenAnonymous(t *testing.T) {
	s := Initial().SignOut()
	name := "Somebody"
	s2 := s.Merge(UserPatch{DisplayName: &name})
	assert.Equal(t, s, s2)
}

func TestDefaultDisplayName(t *testing.T) {
	assert.Equal(t, "jane doe", DefaultDisplayName("jane.doe@example.com"))
	assert.Equal(t, "ops", DefaultDisplayName(" ops@apex.co.za "))
	assert.Equal(t, "", DefaultDisplayName("@example.com"))
}
