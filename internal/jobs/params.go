package jobs

import (
	"fmt"
	"reflect"
	"unsafe"
)

// checkTrivial panics unless P is safe to copy into a Job's inline
// parameter buffer by raw bytes: no pointers hidden inside slices, maps,
// channels, funcs, interfaces or strings, none of which would survive a
// byte-for-byte copy with their invariants intact. This is the run-time
// half of the "detected at spawn time and aborted" fallback for languages,
// like Go, that cannot enforce trivial-copyability at compile time the way
// a C++ static_assert can.
func checkTrivial[P any]() {
	var zero P
	if err := checkTrivialType(reflect.TypeOf(zero)); err != nil {
		panic(fmt.Sprintf("jobs: %T is not a valid job parameter type: %v", zero, err))
	}
}

func checkTrivialType(t reflect.Type) error {
	if t == nil {
		// A fully zero interface type parameter; disallowed below via
		// Kind() == Interface on any named interface, but an untyped nil
		// has no Type at all. Treat it the same way.
		return fmt.Errorf("untyped nil is not a trivially copyable type")
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Pointer, reflect.UnsafePointer:
		return nil
	case reflect.Array:
		return checkTrivialType(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if err := checkTrivialType(t.Field(i).Type); err != nil {
				return fmt.Errorf("field %s: %w", t.Field(i).Name, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("kind %s carries hidden indirection and cannot be memcpy'd safely", t.Kind())
	}
}

// writeParams copies params into job's inline buffer. Callers must have
// already validated P with checkTrivial; Spawn and NewNode both call it
// on every invocation rather than caching the result per P, since the
// check is cheap relative to everything else a spawn does.
func writeParams[P any](job *Job, params P) {
	size := unsafe.Sizeof(params)
	if size > ParamBufferSize {
		panic(fmt.Sprintf("jobs: parameter type of size %d exceeds the %d-byte inline buffer", size, ParamBufferSize))
	}
	if size == 0 {
		return
	}
	src := unsafe.Pointer(&params)
	dst := unsafe.Pointer(&job.ParamBuffer[0])
	copy(unsafe.Slice((*byte)(dst), size), unsafe.Slice((*byte)(src), size))
}

// paramsOf reinterprets a job's inline buffer as *P. Used on the consuming
// side by generic job functions registered through Spawn.
func paramsOf[P any](raw unsafe.Pointer) *P {
	return (*P)(raw)
}

// ParamsOf is the exported counterpart of paramsOf, for Func implementations
// that live outside this package: a Func's params argument is the same raw
// buffer pointer Spawn and NewNode wrote P into, so a job function written
// as func(raw unsafe.Pointer, s *Spawner, info *WorkerInfo) recovers its
// arguments with jobs.ParamsOf[P](raw).
func ParamsOf[P any](raw unsafe.Pointer) *P {
	return paramsOf[P](raw)
}
