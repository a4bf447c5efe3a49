//go:build windows

package watcher

import (
	"encoding/binary"
	"path/filepath"
	"sync"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Watcher delivers removal events via ReadDirectoryChangesW. Only
// delete and rename-away actions are forwarded; everything else the
// directory reports is dropped here.
type Watcher struct {
	handle  windows.Handle
	root    string
	eventCh chan Event
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

func New() (*Watcher, error) {
	return &Watcher{
		eventCh: make(chan Event, 100),
		done:    make(chan struct{}),
	}, nil
}

func (w *Watcher) Events() <-chan Event {
	return w.eventCh
}

// AddRecursive opens the root directory for change notification. The
// whole subtree is covered by a single handle.
func (w *Watcher) AddRecursive(root string) error {
	w.root = root

	pathPtr, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return err
	}

	handle, err := windows.CreateFile(
		pathPtr,
		windows.FILE_LIST_DIRECTORY,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS,
		0,
	)
	if err != nil {
		return err
	}

	w.handle = handle
	return nil
}

func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.readLoop()
}

func (w *Watcher) readLoop() {
	defer w.wg.Done()
	buf := make([]byte, 64*1024)

	for {
		select {
		case <-w.done:
			return
		default:
		}

		var n uint32
		err := windows.ReadDirectoryChanges(
			w.handle,
			&buf[0],
			uint32(len(buf)),
			true, // recursive
			windows.FILE_NOTIFY_CHANGE_FILE_NAME|windows.FILE_NOTIFY_CHANGE_DIR_NAME,
			&n,
			nil,
			0,
		)
		if err != nil {
			// Handle closed by Stop, or the root itself vanished.
			return
		}
		w.emitRemovals(buf[:n])
	}
}

// FILE_NOTIFY_INFORMATION record layout: NextEntryOffset, Action,
// FileNameLength (all uint32), then FileNameLength bytes of UTF-16.
const notifyHeaderSize = 12

// emitRemovals walks a packed FILE_NOTIFY_INFORMATION buffer and
// forwards delete-like actions. Sends never block; a full channel
// drops the event.
func (w *Watcher) emitRemovals(buf []byte) {
	for len(buf) >= notifyHeaderSize {
		next := binary.LittleEndian.Uint32(buf[0:4])
		action := binary.LittleEndian.Uint32(buf[4:8])
		nameLen := int(binary.LittleEndian.Uint32(buf[8:12]))

		removal := action == windows.FILE_ACTION_REMOVED ||
			action == windows.FILE_ACTION_RENAMED_OLD_NAME
		if removal && len(buf) >= notifyHeaderSize+nameLen {
			name := decodeUTF16(buf[notifyHeaderSize : notifyHeaderSize+nameLen])
			select {
			case w.eventCh <- Event{Path: filepath.Join(w.root, name)}:
			default:
			}
		}

		if next == 0 || int(next) > len(buf) {
			break
		}
		buf = buf[next:]
	}
}

func decodeUTF16(b []byte) string {
	u := unsafe.Slice((*uint16)(unsafe.Pointer(&b[0])), len(b)/2)
	return string(utf16.Decode(u))
}

func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	if w.handle != 0 {
		windows.CloseHandle(w.handle)
	}
	w.wg.Wait()
	close(w.eventCh)
	return nil
}
