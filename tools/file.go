package tools

import "os"

func ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func PanicOnError[T any](v T, e error) T {
	if e != nil {
		panic(e)
	}
	return v
}
