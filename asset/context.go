package asset

import (
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// fetchMsg is the single message shape delivered to the Context's mailbox
// by a worker-pool goroutine on fetch completion. It is the only channel
// through which a worker goroutine communicates with the Context; no
// worker goroutine ever mutates Context/BufferEntry/ImageEntry state
// directly (§5's single-owner-mutation rule).
type fetchMsg struct {
	isImage bool
	index   int

	bufferData []byte

	pixels        []byte
	decodedWidth  uint32
	decodedHeight uint32

	err error
}

// settleResult is delivered exactly once, when the post-load pipeline has
// either produced a Content or given up on a FetchFailed.
type settleResult struct {
	content *Content
	err     error
}

// Context is the single owning coordinator described in §4.3/§8: it holds
// the parsed document's buffer/image metadata, the sparse arrays of
// BufferEntry/ImageEntry, the pending-load counter, and the body-finished
// and failure flags, and runs the post-load pipeline exactly once.
type Context struct {
	mu sync.Mutex

	baseDir string
	buffers []gltfBuffer
	images  []gltfImage

	pool worker.DynamicWorkerPool

	pendingCount int
	bodyFinished bool
	failed       bool
	settled      bool

	bufferEntries map[int]*BufferEntry
	imageEntries  map[int]*ImageEntry

	content *Content

	mailbox chan fetchMsg
	done    chan settleResult
}

// newContext builds a Context over the given document's buffer/image
// metadata, starting a worker pool sized per opts and a single
// mailbox-draining goroutine (§5).
func newContext(baseDir string, buffers []gltfBuffer, images []gltfImage, workers, queueSize int, timeout time.Duration) *Context {
	c := &Context{
		baseDir:           baseDir,
		buffers:           buffers,
		images:            images,
		pool:              worker.NewDynamicWorkerPool(workers, queueSize, timeout),
		bufferEntries:     make(map[int]*BufferEntry),
		imageEntries:      make(map[int]*ImageEntry),
		mailbox:           make(chan fetchMsg, queueSize),
		done:              make(chan settleResult, 1),
	}
	go c.drainMailbox()
	return c
}

// FindBuffer lazily constructs the BufferEntry for index on first use and
// triggers its fetch; subsequent calls return the same instance (§4.3).
func (c *Context) FindBuffer(index int) *BufferEntry {
	c.mu.Lock()
	if e, ok := c.bufferEntries[index]; ok {
		c.mu.Unlock()
		return e
	}
	meta := c.buffers[index]
	e := newBufferEntry(index, meta.ByteLength)
	c.bufferEntries[index] = e
	c.pendingCount++
	c.mu.Unlock()

	c.pool.SubmitTask(worker.Task{
		ID: index,
		Do: func() (any, error) {
			data, err := fetchBytes(meta.URI, c.baseDir)
			c.mailbox <- fetchMsg{isImage: false, index: index, bufferData: data, err: err}
			return nil, nil
		},
	})
	return e
}

// FindImage lazily constructs the ImageEntry for index on first use and
// triggers its fetch-and-decode. Embedded bufferView-sourced images are
// out of scope (§6 scopes the core to "external .bin and image URIs");
// an image with no URI counts as a failed fetch. Every failed fetch,
// decode or missing-URI case alike, settles the load with FetchFailed:
// the MalformedAsset or DecodeFailed kind attached to the mailbox
// message is not carried into the settled error.
func (c *Context) FindImage(index int) *ImageEntry {
	c.mu.Lock()
	if e, ok := c.imageEntries[index]; ok {
		c.mu.Unlock()
		return e
	}
	meta := c.images[index]
	img := &Image{Index: index, SourceURI: meta.URI, BufferView: meta.BufferView, MimeType: meta.MimeType}
	e := newImageEntry(index, img)
	c.imageEntries[index] = e
	c.pendingCount++
	c.mu.Unlock()

	c.pool.SubmitTask(worker.Task{
		ID: 1 << 20 + index, // disjoint ID space from buffer tasks
		Do: func() (any, error) {
			if meta.URI == "" {
				c.mailbox <- fetchMsg{isImage: true, index: index, err: newErr(MalformedAsset, "image %d: embedded bufferView images are not supported", index)}
				return nil, nil
			}
			encoded, err := fetchBytes(meta.URI, c.baseDir)
			if err != nil {
				c.mailbox <- fetchMsg{isImage: true, index: index, err: wrapErr(FetchFailed, err)}
				return nil, nil
			}
			pixels, width, height, err := decodeImage(encoded)
			if err != nil {
				c.mailbox <- fetchMsg{isImage: true, index: index, err: wrapErr(DecodeFailed, err)}
				return nil, nil
			}
			c.mailbox <- fetchMsg{isImage: true, index: index, pixels: pixels, decodedWidth: width, decodedHeight: height}
			return nil, nil
		},
	})
	return e
}

// AddAccessor appends acc to the corresponding usage list of the
// BufferEntry owning its buffer (§4.3's add_accessor).
func (c *Context) AddAccessor(acc *Accessor, usage Usage) {
	entry := c.FindBuffer(acc.BufferIndex)
	entry.AddAccessor(acc, usage)
}

// AddTextureInfo appends info to the ImageEntry owning its texture's
// source image (§4.3's add_texture_info).
func (c *Context) AddTextureInfo(info *TextureInfo, imageIndex int) {
	entry := c.FindImage(imageIndex)
	entry.AddTextureInfo(info)
}

// BufferEntry returns the settled BufferEntry for a buffer index, or nil
// if that buffer was never registered. Only meaningful after Wait returns.
func (c *Context) BufferEntry(index int) *BufferEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bufferEntries[index]
}

// ImageEntryAt returns the settled ImageEntry for an image index, or nil
// if that image was never registered. Only meaningful after Wait returns.
func (c *Context) ImageEntryAt(index int) *ImageEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.imageEntries[index]
}

// SetContent installs the scene tree built during body parse; the Context
// hands this same object back (after the pipeline mutates the Accessors
// and TextureInfos it references) once settlement completes.
func (c *Context) SetContent(content *Content) {
	c.mu.Lock()
	c.content = content
	c.mu.Unlock()
}

// MarkBodyFinished signals that synchronous body parse (entity tree
// construction, accessor/texture-info registration) has completed. It
// tests the settle condition immediately in case no fetches were ever
// started (testable property 8).
func (c *Context) MarkBodyFinished() {
	c.mu.Lock()
	c.bodyFinished = true
	shouldSettle := c.pendingCount == 0 && !c.settled
	c.mu.Unlock()

	if shouldSettle {
		c.settle()
	}
}

// Wait blocks until the pipeline settles and returns its result.
func (c *Context) Wait() (*Content, error) {
	res := <-c.done
	return res.content, res.err
}

// drainMailbox is the Context's single mailbox-draining loop (§5): every
// fetch completion message is applied here, serially, and this is the
// only place BufferEntry/ImageEntry/Context state is mutated in response
// to asynchronous I/O.
func (c *Context) drainMailbox() {
	for msg := range c.mailbox {
		c.mu.Lock()
		if msg.isImage {
			entry := c.imageEntries[msg.index]
			if msg.err != nil {
				c.failed = true
			} else {
				entry.Image.Decoded = msg.pixels
				entry.Image.DecodedWidth = msg.decodedWidth
				entry.Image.DecodedHeight = msg.decodedHeight
			}
		} else {
			entry := c.bufferEntries[msg.index]
			if msg.err != nil {
				c.failed = true
			} else {
				entry.Binary = msg.bufferData
			}
		}
		c.pendingCount--
		shouldSettle := c.bodyFinished && c.pendingCount == 0 && !c.settled
		c.mu.Unlock()

		if shouldSettle {
			c.settle()
			return
		}
	}
}

// settle runs exactly once: it evaluates the failure flag and, on
// success, runs the three pipeline stages strictly in order before
// publishing Content (§4.3's settlement rule).
func (c *Context) settle() {
	c.mu.Lock()
	if c.settled {
		c.mu.Unlock()
		return
	}
	c.settled = true
	failed := c.failed
	content := c.content
	c.mu.Unlock()

	if failed {
		c.done <- settleResult{err: newErr(FetchFailed, "one or more buffer/image fetches failed")}
		return
	}

	if err := c.runPipeline(); err != nil {
		c.done <- settleResult{err: err}
		return
	}
	c.done <- settleResult{content: content}
}

// runPipeline performs endian-rewrite, then split-and-rebuild, then
// image-dedupe, strictly in that order (§4.3, §5).
func (c *Context) runPipeline() error {
	indices := make([]int, 0, len(c.bufferEntries))
	for i := range c.bufferEntries {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	for _, i := range indices {
		entry := c.bufferEntries[i]
		if err := entry.EndianRewrite(); err != nil {
			return err
		}
	}

	for _, i := range indices {
		entry := c.bufferEntries[i]
		if len(entry.attributeAccessors) > 0 {
			out, err := splitAccessors(entry.attributeAccessors, entry.Binary)
			if err != nil {
				return err
			}
			entry.AttributeBinary = out
		}
		if len(entry.indexAccessors) > 0 {
			out, err := splitAccessors(entry.indexAccessors, entry.Binary)
			if err != nil {
				return err
			}
			entry.IndexBinary = out
		}
	}

	imgIndices := make([]int, 0, len(c.imageEntries))
	for i := range c.imageEntries {
		imgIndices = append(imgIndices, i)
	}
	sort.Ints(imgIndices)
	for _, i := range imgIndices {
		c.imageEntries[i].Dedup()
	}

	return nil
}
