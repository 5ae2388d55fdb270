package logs_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"osassist/internal/logs"
	"osassist/internal/resources"
	"osassist/internal/testsupport"
)

func TestTailMissingFileIsIdempotentEmptyRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "os_assistant.log")
	for i := 0; i < 3; i++ {
		chunk, err := logs.Tail(path, logs.TailRequest{Offset: uint64(i * 10), LastLines: i})
		if err != nil {
			t.Fatalf("tail returned error: %v", err)
		}
		if chunk.Content != "" || chunk.Offset != 0 {
			t.Fatalf("expected empty chunk, got %+v", chunk)
		}
		if chunk.Path != path {
			t.Fatalf("expected would-be path %q, got %q", path, chunk.Path)
		}
	}
}

func TestTailForwardFromGenesis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.log")
	testsupport.WriteText(t, path, "first\nsecond\n")

	chunk, err := logs.Tail(path, logs.TailRequest{})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if chunk.Content != "first\nsecond\n" {
		t.Fatalf("unexpected content: %q", chunk.Content)
	}
	if chunk.Offset != 13 {
		t.Fatalf("expected offset 13, got %d", chunk.Offset)
	}
}

func TestTailZeroLastLinesIsForwardMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.log")
	testsupport.WriteText(t, path, "a\nb\nc\n")

	chunk, err := logs.Tail(path, logs.TailRequest{LastLines: 0})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if chunk.Content != "a\nb\nc\n" {
		t.Fatalf("expected full forward read, got %q", chunk.Content)
	}
}

func TestTailLastLinesIgnoredWithNonzeroOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.log")
	testsupport.WriteText(t, path, "a\nb\nc\n")

	chunk, err := logs.Tail(path, logs.TailRequest{Offset: 2, LastLines: 1})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if chunk.Content != "b\nc\n" {
		t.Fatalf("expected forward read from offset 2, got %q", chunk.Content)
	}
}

func TestTailMonotonicCatchUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grow.log")
	testsupport.WriteText(t, path, "")

	var want, got strings.Builder
	var offset uint64
	for i := 0; i < 25; i++ {
		line := fmt.Sprintf("line %02d %s\n", i, strings.Repeat("x", i))
		testsupport.AppendText(t, path, line)
		want.WriteString(line)

		chunk, err := logs.Tail(path, logs.TailRequest{Offset: offset, MaxBytes: logs.Cap(64)})
		if err != nil {
			t.Fatalf("tail %d returned error: %v", i, err)
		}
		if chunk.Offset < offset {
			t.Fatalf("offset went backwards: %d -> %d", offset, chunk.Offset)
		}
		got.WriteString(chunk.Content)
		offset = chunk.Offset
	}

	if got.String() != want.String() {
		t.Fatalf("concatenated chunks differ from file:\n got %q\nwant %q", got.String(), want.String())
	}
	if offset != uint64(want.Len()) {
		t.Fatalf("expected final offset %d, got %d", want.Len(), offset)
	}
}

func TestTailRespectsCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.log")
	testsupport.WriteSizedLog(t, path, 10_000)

	chunk, err := logs.Tail(path, logs.TailRequest{MaxBytes: logs.Cap(1024)})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if len(chunk.Content) != 1024 {
		t.Fatalf("expected 1024 bytes, got %d", len(chunk.Content))
	}
	if chunk.Offset != 10_000 {
		t.Fatalf("expected offset to report file length, got %d", chunk.Offset)
	}
}

func TestTailDefaultCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.log")
	testsupport.WriteSizedLog(t, path, int(logs.DefaultMaxBytes)+500)

	chunk, err := logs.Tail(path, logs.TailRequest{})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if uint64(len(chunk.Content)) != logs.DefaultMaxBytes {
		t.Fatalf("expected default cap of %d bytes, got %d", logs.DefaultMaxBytes, len(chunk.Content))
	}
}

func TestTailZeroCapYieldsEmptyRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.log")
	testsupport.WriteText(t, path, "content\n")

	for _, req := range []logs.TailRequest{
		{MaxBytes: logs.Cap(0)},
		{MaxBytes: logs.Cap(0), LastLines: 5},
		{MaxBytes: logs.Cap(0), Offset: 100},
	} {
		chunk, err := logs.Tail(path, req)
		if err != nil {
			t.Fatalf("tail returned error: %v", err)
		}
		if chunk.Content != "" || chunk.Offset != 8 {
			t.Fatalf("expected empty content at offset 8, got %+v", chunk)
		}
	}
}

func TestTailTruncationRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rotate.log")
	testsupport.WriteText(t, path, strings.Repeat("old line\n", 20))

	first, err := logs.Tail(path, logs.TailRequest{})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}

	testsupport.WriteText(t, path, "new 1\nnew 2\n")

	next, err := logs.Tail(path, logs.TailRequest{Offset: first.Offset})
	if err != nil {
		t.Fatalf("tail after truncation returned error: %v", err)
	}
	if next.Content != "new 1\nnew 2\n" {
		t.Fatalf("expected content from the new file, got %q", next.Content)
	}
	if next.Offset != 12 {
		t.Fatalf("expected offset reset to new length 12, got %d", next.Offset)
	}
}

func TestTailTruncationClampsToFinalWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rotate.log")
	testsupport.WriteText(t, path, "0123456789")

	chunk, err := logs.Tail(path, logs.TailRequest{Offset: 500, MaxBytes: logs.Cap(4)})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if chunk.Content != "6789" || chunk.Offset != 10 {
		t.Fatalf("expected final 4-byte window, got %+v", chunk)
	}
}

func TestTailStaleOffsetWithLastLinesReadsForward(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rotate.log")
	testsupport.WriteText(t, path, "a\nb\nc\n")

	// The clamp lands on 0, but the nonzero offset still selects a forward read.
	chunk, err := logs.Tail(path, logs.TailRequest{Offset: 100, LastLines: 1})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if chunk.Content != "a\nb\nc\n" || chunk.Offset != 6 {
		t.Fatalf("expected forward read of the whole file, got %+v", chunk)
	}
}

func TestTailLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.log")
	var b strings.Builder
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&b, "L%d\n", i)
	}
	testsupport.WriteText(t, path, b.String())

	chunk, err := logs.Tail(path, logs.TailRequest{LastLines: 3})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if chunk.Content != "L8\nL9\nL10" {
		t.Fatalf("unexpected tail: %q", chunk.Content)
	}
	if chunk.Offset != uint64(b.Len()) {
		t.Fatalf("expected offset %d, got %d", b.Len(), chunk.Offset)
	}
}

func TestTailLastLinesMoreThanAvailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.log")
	testsupport.WriteText(t, path, "a\r\nb\r\n")

	chunk, err := logs.Tail(path, logs.TailRequest{LastLines: 50})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if chunk.Content != "a\nb" {
		t.Fatalf("expected whole file without carriage returns, got %q", chunk.Content)
	}
}

func TestTailLastLinesDropsPartialFirstLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.log")
	long := "BEGIN" + strings.Repeat("z", 200) + "END"
	testsupport.WriteText(t, path, long+"\nshort 1\nshort 2\nshort 3\n")

	chunk, err := logs.Tail(path, logs.TailRequest{LastLines: 100, MaxBytes: logs.Cap(64)})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if strings.Contains(chunk.Content, "z") {
		t.Fatalf("tail surfaced a fragment of the long line: %q", chunk.Content)
	}
	if chunk.Content != "short 1\nshort 2\nshort 3" {
		t.Fatalf("unexpected tail: %q", chunk.Content)
	}
}

func TestTailLastLinesKeepsCompleteLinesAfterBoundary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.log")
	testsupport.WriteText(t, path, strings.Repeat("q", 100)+"\nshort 1\nshort 2\nshort 3\n")

	chunk, err := logs.Tail(path, logs.TailRequest{LastLines: 2, MaxBytes: logs.Cap(40)})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if chunk.Content != "short 2\nshort 3" {
		t.Fatalf("expected the last two complete lines, got %q", chunk.Content)
	}
}

func TestTailLastLinesWindowInsideSingleLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.log")
	testsupport.WriteText(t, path, strings.Repeat("w", 500))

	chunk, err := logs.Tail(path, logs.TailRequest{LastLines: 3, MaxBytes: logs.Cap(50)})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if chunk.Content != "" {
		t.Fatalf("expected an incomplete line to be discarded, got %q", chunk.Content)
	}
	if chunk.Offset != 500 {
		t.Fatalf("expected offset 500, got %d", chunk.Offset)
	}
}

func TestTailDecodeError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "binary.log")
	if err := os.WriteFile(path, []byte{'o', 'k', 0xff, 0xfe, '\n'}, 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	_, err := logs.Tail(path, logs.TailRequest{})
	var decodeErr *logs.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	var ioErr *logs.IOError
	if errors.As(err, &ioErr) {
		t.Fatal("decode failure must be distinct from I/O errors")
	}
}

func TestTailSplitMultibyteIsDecodeError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "utf8.log")
	testsupport.WriteText(t, path, "héllo\n")

	// 'é' occupies bytes 1-2; a cap of 2 cuts it in half.
	_, err := logs.Tail(path, logs.TailRequest{MaxBytes: logs.Cap(2)})
	var decodeErr *logs.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestTailValidMultibyteContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "utf8.log")
	testsupport.WriteText(t, path, "héllo wörld\n")

	chunk, err := logs.Tail(path, logs.TailRequest{})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if chunk.Content != "héllo wörld\n" || chunk.Offset != 14 {
		t.Fatalf("unexpected chunk: %+v", chunk)
	}
}

func TestTailDirectoryIsIOError(t *testing.T) {
	dir := t.TempDir()
	_, err := logs.Tail(dir, logs.TailRequest{})
	var ioErr *logs.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError, got %v", err)
	}
}

func TestTailConcurrentCursorsAreIndependent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.log")
	testsupport.WriteText(t, path, strings.Repeat("seed\n", 10))

	type observation struct {
		offset uint64
		chunk  logs.LogChunk
	}
	var (
		mu  sync.Mutex
		obs []observation
		wg  sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			t.Errorf("open for append: %v", err)
			return
		}
		defer f.Close()
		for i := 0; i < 50; i++ {
			if _, err := fmt.Fprintf(f, "append %d\n", i); err != nil {
				t.Errorf("append: %v", err)
				return
			}
		}
	}()

	for _, cursor := range []uint64{0, 25} {
		wg.Add(1)
		go func(offset uint64) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				chunk, err := logs.Tail(path, logs.TailRequest{Offset: offset, MaxBytes: logs.Cap(32)})
				if err != nil {
					t.Errorf("tail returned error: %v", err)
					return
				}
				mu.Lock()
				obs = append(obs, observation{offset: offset, chunk: chunk})
				mu.Unlock()
			}
		}(cursor)
	}
	wg.Wait()

	final, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read final log: %v", err)
	}
	for _, o := range obs {
		end := o.offset + uint64(len(o.chunk.Content))
		if string(final[o.offset:end]) != o.chunk.Content {
			t.Fatalf("chunk for cursor %d does not match file bytes: %q", o.offset, o.chunk.Content)
		}
		if len(o.chunk.Content) > 32 {
			t.Fatalf("chunk exceeded cap: %d bytes", len(o.chunk.Content))
		}
	}
}

func TestReaderResolvesLocation(t *testing.T) {
	base := t.TempDir()
	reader := logs.NewReader(resources.NewLocator(base), "os_assistant.log", 0)

	chunk, err := reader.Tail(logs.TailRequest{})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if want := filepath.Join(base, "logs", "os_assistant.log"); chunk.Path != want {
		t.Fatalf("expected stable would-be path %q, got %q", want, chunk.Path)
	}

	testsupport.WriteText(t, filepath.Join(base, "os_assistant.log"), "flat\n")
	chunk, err = reader.Tail(logs.TailRequest{})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if chunk.Content != "flat\n" {
		t.Fatalf("expected flat fallback content, got %q", chunk.Content)
	}
}

func TestReaderWithoutResourcesDir(t *testing.T) {
	reader := logs.NewReader(&resources.Locator{
		Executable: func() (string, error) { return "", errors.New("none") },
		WorkingDir: func() (string, error) { return "", errors.New("none") },
	}, "os_assistant.log", 0)

	if _, err := reader.Tail(logs.TailRequest{}); !errors.Is(err, logs.ErrResourcesNotFound) {
		t.Fatalf("expected ErrResourcesNotFound, got %v", err)
	}
}

func TestReaderDefaultCapFromConstructor(t *testing.T) {
	base := t.TempDir()
	testsupport.WriteSizedLog(t, filepath.Join(base, "logs", "os_assistant.log"), 100)
	reader := logs.NewReader(resources.NewLocator(base), "os_assistant.log", 10)

	chunk, err := reader.Tail(logs.TailRequest{})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if len(chunk.Content) != 10 {
		t.Fatalf("expected reader cap of 10 bytes, got %d", len(chunk.Content))
	}
}
