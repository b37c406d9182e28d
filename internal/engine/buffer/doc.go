// Package buffer provides the thread-safe text buffer that backs the exercise
// editor.
//
// A Buffer holds LF-normalized text with a line index. Every mutation bumps
// the revision and is reported to listeners as a ContentChange whose ranges
// are expressed in pre-edit coordinates:
//
//	buf := buffer.NewBufferFromString("fn main() {\n}")
//	unsub := buf.OnChange(func(cc buffer.ContentChange) {
//	    for _, c := range cc.Changes {
//	        fmt.Println(c.Range, c.Text)
//	    }
//	})
//	defer unsub()
//
//	buf.Insert(buffer.Point{Line: 1, Column: 0}, "    todo!();\n")
//
// SetText replaces the whole content and reports a change with Full set, in
// which case Changes is empty and listeners should diff the old and new text
// themselves.
//
// Listeners are invoked after the write lock is released, so a listener may
// call back into the buffer (for example to restore earlier content).
package buffer
