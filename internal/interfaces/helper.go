package interfaces

// Chunk 把切片按 size 切分，用于分批写库
func Chunk[T any](slice []T, size int) [][]T {
	if size <= 0 || len(slice) <= size {
		if len(slice) == 0 {
			return nil
		}
		return [][]T{slice}
	}
	res := make([][]T, 0, (len(slice)+size-1)/size)
	for start := 0; start < len(slice); start += size {
		end := start + size
		if end > len(slice) {
			end = len(slice)
		}
		res = append(res, slice[start:end])
	}
	return res
}
