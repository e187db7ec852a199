package sqlite

import (
	"database/sql/driver"
	"fmt"
	"sync"

	sqlite "modernc.org/sqlite"
)

// vecFuncName is the SQL scalar used to score stored embeddings.
const vecFuncName = "vec_inner_product"

var registerVecOnce sync.Once

// registerVectorFunctions registers vec_inner_product with the driver so it
// is available on connections opened afterwards. Registration is global to
// the driver, so it must happen before sql.Open.
func registerVectorFunctions() {
	registerVecOnce.Do(func() {
		_ = sqlite.RegisterDeterministicScalarFunction(vecFuncName, 2, vecInnerProductImpl)
	})
}

func vecInnerProductImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%s: expected 2 arguments, got %d", vecFuncName, len(args))
	}
	a, err := asEmbedding(args[0])
	if err != nil {
		return nil, err
	}
	b, err := asEmbedding(args[1])
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}
	if len(a) != len(b) {
		return nil, fmt.Errorf("%s: dimension mismatch %d vs %d", vecFuncName, len(a), len(b))
	}

	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum, nil
}

// asEmbedding decodes a BLOB argument into a vector. NULL passes through so
// the scalar returns NULL rather than erroring mid-query.
func asEmbedding(arg driver.Value) ([]float32, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		if len(v)%4 != 0 {
			return nil, fmt.Errorf("%s: blob length %d is not a multiple of 4", vecFuncName, len(v))
		}
		return bytesToFloat32Slice(v), nil
	default:
		return nil, fmt.Errorf("%s: unsupported argument type %T, want BLOB", vecFuncName, arg)
	}
}
