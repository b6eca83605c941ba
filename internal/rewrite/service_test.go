package rewrite

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/recast/internal/apperr"
	"github.com/starford/recast/internal/checksum"
	"github.com/starford/recast/internal/report"
	"github.com/starford/recast/internal/storage"
	"github.com/starford/recast/internal/testutil"
)

var fixedNow = time.Date(2025, 7, 9, 10, 0, 0, 0, time.Local)

func newService(gen *testutil.FakeGenerator) (*Service, *report.Reporter, *bytes.Buffer) {
	rep := report.New(report.DefaultMinWords)
	var console bytes.Buffer
	svc := NewService(gen, rep, nil,
		WithConsole(&console),
		WithClock(func() time.Time { return fixedNow }))
	return svc, rep, &console
}

func TestRewrite_DeepWorkScenario(t *testing.T) {
	src := testutil.NewMemSource("idea.md", "---\ntitle: \"Deep Work\"\n---\nSome notes.")
	gen := &testutil.FakeGenerator{Reply: "# Deep Work\n\nHello world."}
	svc, rep, console := newService(gen)

	res, err := svc.Rewrite(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, "---\ntitle: \"Deep Work\"\ndate: \"2025-07-09\"\n---\nHello world.", string(src.Content))
	assert.Equal(t, "idea.md", res.File)
	assert.Equal(t, 2, res.WordCount)
	assert.True(t, res.Flagged)
	assert.Equal(t, checksum.Sum(src.Content), res.ChecksumAfter)
	assert.Equal(t, checksum.Sum([]byte("---\ntitle: \"Deep Work\"\n---\nSome notes.")), res.ChecksumBefore)

	assert.Equal(t, "Rewriting: idea.md\n", console.String())
	assert.Equal(t, "idea.md: 2 words ⚠ THIN\n", string(rep.Bytes()))

	require.Len(t, gen.Prompts, 1)
	assert.Contains(t, gen.Prompts[0], `"Deep Work"`)
	assert.True(t, strings.HasSuffix(gen.Prompts[0], "Some notes.\n"))
}

func TestRewrite_CRLFFrontmatter(t *testing.T) {
	src := testutil.NewMemSource("deep-work.md", "---\r\ntitle: \"Deep Work\"\r\nauthor: \"Ann\"\r\n---\r\nSome notes.\r\n")
	gen := &testutil.FakeGenerator{Reply: "# Deep Work\n\nHello world."}
	svc, _, _ := newService(gen)

	res, err := svc.Rewrite(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, "---\ntitle: \"Deep Work\"\nauthor: \"Ann\"\ndate: \"2025-07-09\"\n---\nHello world.", string(src.Content))
	assert.Equal(t, 2, res.WordCount)
	require.Len(t, gen.Prompts, 1)
	assert.NotContains(t, gen.Prompts[0], "author:")
}

func TestRewrite_NoFrontmatterScenario(t *testing.T) {
	src := testutil.NewMemSource("Just-body-text.md", "Just body text.")
	gen := &testutil.FakeGenerator{Reply: "```markdown\ncontent\n```"}
	svc, _, _ := newService(gen)

	res, err := svc.Rewrite(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, "---\ntitle: \"Just body text\"\ndate: \"2025-07-09\"\n---\ncontent", string(src.Content))
	assert.Equal(t, 1, res.WordCount)
	require.Len(t, gen.Prompts, 1)
	assert.Contains(t, gen.Prompts[0], `"Just body text"`)
	assert.Contains(t, gen.Prompts[0], "\nJust body text.\n")
}

func TestRewrite_LongOutputNotFlagged(t *testing.T) {
	body := strings.TrimSpace(strings.Repeat("word ", 650))
	src := testutil.NewMemSource("long.md", "---\ntitle: Long\ndate: 2020-02-02\n---\nold")
	svc, rep, _ := newService(&testutil.FakeGenerator{Reply: body})

	res, err := svc.Rewrite(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 650, res.WordCount)
	assert.False(t, res.Flagged)
	assert.Equal(t, "long.md: 650 words\n", string(rep.Bytes()))
	assert.True(t, strings.HasPrefix(string(src.Content), "---\ntitle: \"Long\"\ndate: 2020-02-02\n---\n"))
}

func TestRewriteAll_ProcessesInOrder(t *testing.T) {
	a := testutil.NewMemSource("b-post.md", "first")
	b := testutil.NewMemSource("a-post.md", "second")
	gen := &testutil.FakeGenerator{Fn: func(call int, _ string) (string, error) {
		return strings.Repeat("x ", call), nil
	}}
	svc, rep, console := newService(gen)

	results, err := svc.RewriteAll(context.Background(), []storage.Source{a, b})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "b-post.md", results[0].File)
	assert.Equal(t, 1, results[0].WordCount)
	assert.Equal(t, "a-post.md", results[1].File)
	assert.Equal(t, 2, results[1].WordCount)
	assert.Equal(t, "Rewriting: b-post.md\nRewriting: a-post.md\n", console.String())
	assert.Len(t, rep.Entries(), 2)
}

func TestRewriteAll_StopsAtFirstFailure(t *testing.T) {
	boom := errors.New("rate limited")
	first := testutil.NewMemSource("one.md", "1")
	second := testutil.NewMemSource("two.md", "2")
	third := testutil.NewMemSource("three.md", "3")
	gen := &testutil.FakeGenerator{Fn: func(call int, _ string) (string, error) {
		if call == 2 {
			return "", boom
		}
		return "ok", nil
	}}
	svc, rep, _ := newService(gen)

	results, err := svc.RewriteAll(context.Background(), []storage.Source{first, second, third})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "two.md")
	assert.Nil(t, results)

	assert.Equal(t, 1, first.Writes)
	assert.Equal(t, 0, second.Writes)
	assert.Equal(t, "2", string(second.Content))
	assert.Equal(t, 0, third.Writes)
	assert.Len(t, gen.Prompts, 2)
	assert.Len(t, rep.Entries(), 1)
}

func TestRewrite_MalformedFrontmatterSkipsGeneration(t *testing.T) {
	src := testutil.NewMemSource("bad.md", "---\n: : {{\n---\nbody")
	gen := &testutil.FakeGenerator{Reply: "unused"}
	svc, _, console := newService(gen)

	_, err := svc.Rewrite(context.Background(), src)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrMalformedFrontmatter)
	assert.Empty(t, gen.Prompts)
	assert.Empty(t, console.String())
	assert.Equal(t, 0, src.Writes)
}

func TestRewrite_ReadAndWriteErrors(t *testing.T) {
	readErr := errors.New("permission denied")
	src := testutil.NewMemSource("r.md", "x")
	src.ReadErr = readErr
	svc, rep, _ := newService(&testutil.FakeGenerator{Reply: "y"})
	_, err := svc.Rewrite(context.Background(), src)
	assert.ErrorIs(t, err, readErr)

	writeErr := errors.New("disk full")
	src = testutil.NewMemSource("w.md", "x")
	src.WriteErr = writeErr
	_, err = svc.Rewrite(context.Background(), src)
	assert.ErrorIs(t, err, writeErr)
	assert.Empty(t, rep.Entries())
}
