package backup

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"modpaypal/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInstance() *domain.Instance {
	return &domain.Instance{
		ID:                       3,
		CourseID:                 9,
		Name:                     "Course fee & extras",
		Intro:                    `See <a href="https://lms.example.com/mod/paypal/view.php?id=12">the page</a>`,
		BusinessEmail:            "biz@example.com",
		Cost:                     decimal.RequireFromString("10.5"),
		Currency:                 "USD",
		ItemName:                 "Go 101 fee",
		ItemNumber:               "GO101",
		MailStudents:             true,
		PaymentCompletionEnabled: true,
		TimeCreated:              1700000000,
		TimeModified:             1700000100,
	}
}

func TestExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleInstance(), 42, 77, "https://lms.example.com"))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `<activity id="3" moduleid="42" modulename="paypal" contextid="77">`)
	assert.Contains(t, out, `<paypal id="3">`)
	assert.Contains(t, out, "<cost>10.50</cost>")
	assert.Contains(t, out, "<mailstudents>1</mailstudents>")
	assert.Contains(t, out, "<mailadmins>0</mailadmins>")
	assert.Contains(t, out, "Course fee &amp; extras")
	assert.Contains(t, out, "$@PAYPALVIEWBYID*12@$")
	assert.NotContains(t, out, "view.php?id=12")
}

func TestImportRestoresExport(t *testing.T) {
	var buf bytes.Buffer
	orig := sampleInstance()
	require.NoError(t, Export(&buf, orig, 42, 77, "https://lms.example.com"))

	got, err := Import(&buf)
	require.NoError(t, err)
	assert.Equal(t, orig.CourseID, got.CourseID)
	assert.Equal(t, orig.Name, got.Name)
	assert.True(t, orig.Cost.Equal(got.Cost))
	assert.Equal(t, orig.MailStudents, got.MailStudents)
	assert.Equal(t, orig.PaymentCompletionEnabled, got.PaymentCompletionEnabled)
	assert.False(t, got.MailTeachers)
	assert.Contains(t, got.Intro, "$@PAYPALVIEWBYID*12@$")
}

func TestImportRejectsOtherModules(t *testing.T) {
	_, err := Import(strings.NewReader(`<activity id="1" modulename="forum"><paypal id="1"><cost>1</cost></paypal></activity>`))
	assert.Error(t, err)

	_, err = Import(strings.NewReader(`<activity modulename="paypal"><paypal><cost>abc</cost></paypal></activity>`))
	assert.Error(t, err)
}

func TestEncodeContentLinks(t *testing.T) {
	root := "https://lms.example.com"
	in := root + "/mod/paypal/index.php?id=4 and " + root + "/mod/paypal/view.php?id=15 but not https://other.example.com/mod/paypal/view.php?id=1"

	out := EncodeContentLinks(in, root+"/")
	assert.Equal(t, "$@PAYPALINDEX*4@$ and $@PAYPALVIEWBYID*15@$ but not https://other.example.com/mod/paypal/view.php?id=1", out)

	assert.Equal(t, "", EncodeContentLinks("", root))
	assert.Equal(t, "https://lmsXexample.com/mod/paypal/view.php?id=1", EncodeContentLinks("https://lmsXexample.com/mod/paypal/view.php?id=1", root))
}

type fakeLister []domain.Instance

func (f fakeLister) ListByCourse(context.Context, int64) ([]domain.Instance, error) {
	return f, nil
}

func TestExportCourse(t *testing.T) {
	dir := t.TempDir()
	second := *sampleInstance()
	second.ID = 4
	svc := NewService(fakeLister{*sampleInstance(), second}, "https://lms.example.com", t.Logf)

	paths, err := svc.ExportCourse(context.Background(), 9, dir)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "activities", "paypal_4", "paypal.xml"), paths[1])

	f, err := os.Open(paths[1])
	require.NoError(t, err)
	defer f.Close()
	got, err := Import(f)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.ID)
}
