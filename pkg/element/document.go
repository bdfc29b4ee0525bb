package element

import "sync"

// DocumentOption configures a Document.
type DocumentOption func(*Document)

// WithAsyncNotify delivers detachment notifications on their own goroutine,
// the way a host mutation observer reports out-of-band.
func WithAsyncNotify() DocumentOption {
	return func(d *Document) {
		d.async = true
	}
}

// Document is a minimal live element tree. It tracks which elements are
// attached and notifies observers when one is detached.
type Document struct {
	mu       sync.Mutex
	async    bool
	attached map[Element][]*observation
	order    []Element
	wg       sync.WaitGroup
}

// NewDocument builds an empty document.
func NewDocument(options ...DocumentOption) *Document {
	d := &Document{
		attached: make(map[Element][]*observation),
	}
	for _, opt := range options {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Append attaches elements to the document. Inputs learn their owning
// document so ResetForm can reach it.
func (d *Document) Append(elements ...Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, el := range elements {
		if el == nil {
			continue
		}
		if _, ok := d.attached[el]; ok {
			continue
		}
		d.attached[el] = nil
		d.order = append(d.order, el)
		if in, ok := el.(*Input); ok {
			in.setDocument(d)
		}
	}
}

// Remove detaches elements and notifies their observers.
func (d *Document) Remove(elements ...Element) {
	var pending []*observation
	d.mu.Lock()
	for _, el := range elements {
		observers, ok := d.attached[el]
		if !ok {
			continue
		}
		delete(d.attached, el)
		d.order = removeElement(d.order, el)
		if in, ok := el.(*Input); ok {
			in.setDocument(nil)
		}
		pending = append(pending, observers...)
	}
	d.mu.Unlock()

	for _, obs := range pending {
		if d.async {
			d.wg.Add(1)
			go func(o *observation) {
				defer d.wg.Done()
				o.fire()
			}(obs)
			continue
		}
		obs.fire()
	}
}

// Wait blocks until asynchronous notifications delivered so far have run.
func (d *Document) Wait() {
	d.wg.Wait()
}

// Contains reports whether el is attached.
func (d *Document) Contains(el Element) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.attached[el]
	return ok
}

// Elements returns the attached elements in attachment order.
func (d *Document) Elements() []Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Element(nil), d.order...)
}

// Reset restores every attached input to its initial state.
func (d *Document) Reset() {
	for _, el := range d.Elements() {
		if in, ok := el.(*Input); ok {
			in.restore()
		}
	}
}

// Observe registers onDetached for el. Elements that are not attached, and
// logical-only references, are not observable and report false.
func (d *Document) Observe(el Element, onDetached func()) (Observation, bool) {
	if el == nil || el.Type() == "" || onDetached == nil {
		return nil, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	observers, ok := d.attached[el]
	if !ok {
		return nil, false
	}
	obs := &observation{doc: d, el: el, fn: onDetached}
	d.attached[el] = append(observers, obs)
	return obs, true
}

func (d *Document) disconnect(target *observation) {
	d.mu.Lock()
	defer d.mu.Unlock()
	observers, ok := d.attached[target.el]
	if !ok {
		return
	}
	kept := observers[:0]
	for _, obs := range observers {
		if obs != target {
			kept = append(kept, obs)
		}
	}
	d.attached[target.el] = kept
}

type observation struct {
	doc  *Document
	el   Element
	fn   func()
	once sync.Once
}

func (o *observation) fire() {
	o.once.Do(o.fn)
}

func (o *observation) Disconnect() {
	o.doc.disconnect(o)
}

func removeElement(list []Element, target Element) []Element {
	for i, el := range list {
		if el == target {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
