package datapush

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakySender struct {
	failures int
	calls    int
}

func (f *flakySender) Send(*email.Email) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("421 try again")
	}
	return nil
}

func TestBuildReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toplam_istihdam.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0644))

	e, err := BuildReport("rapor@example.org", []string{"ekip@example.org"}, "Grafikler", "Ekte.", []string{path})
	require.NoError(t, err)
	assert.Equal(t, "Grafikler", e.Subject)
	require.Len(t, e.Attachments, 1)
	assert.Equal(t, "toplam_istihdam.png", e.Attachments[0].Filename)

	_, err = BuildReport("rapor@example.org", []string{"ekip@example.org"}, "x", "", []string{path + ".yok"})
	assert.Error(t, err)

	_, err = BuildReport("rapor@example.org", nil, "x", "", nil)
	assert.Error(t, err)
}

func TestPushReportRetries(t *testing.T) {
	RetryInterval = 0
	RetryTimes = 3

	ok := &flakySender{failures: 2}
	require.NoError(t, PushReport(ok, email.NewEmail()))
	assert.Equal(t, 3, ok.calls)

	bad := &flakySender{failures: 5}
	err := PushReport(bad, email.NewEmail())
	require.Error(t, err)
	assert.Equal(t, 3, bad.calls)
}
