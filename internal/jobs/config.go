package jobs

// Tunables mirroring the fixed compile-time constants of the system this
// package is modeled on. They are package-level constants rather than
// configurable fields because the data structures they size (the deque's
// ring buffer, a chunk's job array) are fixed-size Go arrays: changing them
// requires a rebuild, same as the original's C++ constexpr values.
const (
	// QueueCapacity bounds how many jobs a single worker's deque can hold
	// at once. A power of two keeps the modulo-by-capacity index math a
	// cheap mask in spirit, even though Go's % on signed ints compiles to
	// a real division unless the compiler proves otherwise.
	QueueCapacity = 4096

	// ChunkSize is the number of Job records carved out of one allocation
	// chunk, i.e. how many jobs a worker can hand out between trips to the
	// shared chunk allocator.
	ChunkSize = 2048

	// MinParamBufferSize is the minimum guaranteed size, in bytes, of a
	// Job's inline parameter buffer. The effective size (ParamBufferSize)
	// is rounded up so the whole Job is a multiple of the cacheline size.
	MinParamBufferSize = 32

	// cachelineSize is the cacheline size a Job is sized to fill (see
	// ParamBufferSize). 64 bytes covers essentially every mainstream CPU
	// this is likely to run on. Hot atomic fields are padded apart with
	// cpu.CacheLinePad, not with this constant.
	cachelineSize = 64
)
