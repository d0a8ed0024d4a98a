// Command cabi builds the stable C-ABI surface of §6 as a c-shared library:
// CreateSolver, DeleteSolver, FitData32/64, Predict32/64, GetBestModel,
// GetModel, FreeModel, Xicor32/64, Pearson32/64. Every entry point accepts
// a plain C struct of scalars and raw pointers to row-major float/double
// arrays. FitData32/64, Predict32/64, GetBestModel and GetModel return 0 on
// success, 1 on failure; CreateSolver returns a handle (0 on failure),
// DeleteSolver and FreeModel return nothing, and Xicor32/64 and
// Pearson32/64 return the coefficient. The layout mirrors the original
// Hroch library's Inteface.cpp. Unlike the original's `void *`
// opaque pointer, a solver handle here is a runtime/cgo.Handle value
// carried as an unsigned long long: it never exposes a real Go pointer
// across the cgo boundary, so the Go garbage collector stays free to move
// the underlying engine.Engine. Build with:
//
//	go build -buildmode=c-shared -o libsymreg.so ./cabi
package main

/*
#include <stdlib.h>

typedef struct solver_params {
	unsigned long long random_seed;
	unsigned int num_threads;
	unsigned int precision;
	unsigned int pop_size;
	unsigned int transformation;
	double clip_min;
	double clip_max;
	unsigned int input_size;
	unsigned int const_size;
	unsigned int min_code_size;
	unsigned int max_code_size;
	double init_const_min;
	double init_const_max;
	double init_predefined_const_prob;
	unsigned int init_predefined_const_count;
	const double *init_predefined_const_set;
} solver_params;

typedef struct fit_params {
	unsigned int time_limit_ms;
	unsigned int verbose;
	unsigned int pop_sel;
	unsigned int metric;
	unsigned int pretest_size;
	unsigned int sample_size;
	unsigned int neighbours_count;
	double alpha;
	double beta;
	unsigned long long iter_limit;
	double const_min;
	double const_max;
	double predefined_const_prob;
	unsigned int predefined_const_count;
	const double *predefined_const_set;
	const char *instruction_set;
	const char *feature_probs;
	double cw0;
	double cw1;
} fit_params;

typedef struct predict_params {
	unsigned long long id;
	unsigned int verbose;
} predict_params;

typedef struct math_model {
	unsigned long long id;
	double score;
	double partial_score;
	char *str_representation;
	char *str_code_representation;
	unsigned int used_constants_count;
	double *used_constants;
} math_model;
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/symreg-dev/symreg/engine"
	"github.com/symreg-dev/symreg/sr"
	"github.com/symreg-dev/symreg/sr/xicor"
)

func cDoubleSlice(ptr *C.double, n C.uint) []float64 {
	if ptr == nil || n == 0 {
		return nil
	}
	src := unsafe.Slice((*float64)(unsafe.Pointer(ptr)), int(n))
	out := make([]float64, len(src))
	copy(out, src)
	return out
}

func buildSolverParams(p *C.solver_params) engine.SolverParams {
	return engine.SolverParams{
		RandomSeed:     uint64(p.random_seed),
		NumThreads:     uint32(p.num_threads),
		Precision:      sr.Precision(p.precision),
		PopSize:        uint32(p.pop_size),
		Transformation: sr.Transformation(p.transformation),
		ClipMin:        float64(p.clip_min),
		ClipMax:        float64(p.clip_max),
		CodeSettings: sr.CodeSettings{
			InputSize:   uint32(p.input_size),
			ConstSize:   uint32(p.const_size),
			MinCodeSize: uint32(p.min_code_size),
			MaxCodeSize: uint32(p.max_code_size),
		},
		InitConstSettings: sr.ConstSettings{
			Min:            float64(p.init_const_min),
			Max:            float64(p.init_const_max),
			PredefinedProb: float64(p.init_predefined_const_prob),
			PredefinedSet:  cDoubleSlice(p.init_predefined_const_set, p.init_predefined_const_count),
		},
	}
}

func buildFitParams(p *C.fit_params, xcols C.uint) sr.FitParams {
	_ = xcols // feature-probability length is validated by sr.ResolveFeatureProbs itself
	return sr.FitParams{
		TimeLimitMs:     uint32(p.time_limit_ms),
		Verbose:         uint32(p.verbose),
		Tournament:      uint32(p.pop_sel),
		Metric:          sr.Metric(p.metric),
		PretestSize:     uint32(p.pretest_size),
		SampleSize:      uint32(p.sample_size),
		NeighboursCount: uint32(p.neighbours_count),
		Alpha:           float64(p.alpha),
		Beta:            float64(p.beta),
		IterLimit:       uint64(p.iter_limit),
		ConstSettings: sr.ConstSettings{
			Min:            float64(p.const_min),
			Max:            float64(p.const_max),
			PredefinedProb: float64(p.predefined_const_prob),
			PredefinedSet:  cDoubleSlice(p.predefined_const_set, p.predefined_const_count),
		},
		InstructionSet: C.GoString(p.instruction_set),
		FeatureProbs:   C.GoString(p.feature_probs),
		CW0:            float64(p.cw0),
		CW1:            float64(p.cw1),
	}
}

func rowsF32(ptr *C.float, rows, cols C.uint) [][]float64 {
	flat := unsafe.Slice((*float32)(unsafe.Pointer(ptr)), int(rows)*int(cols))
	out := make([][]float64, rows)
	for i := range out {
		row := make([]float64, cols)
		base := int(i) * int(cols)
		for c := range row {
			row[c] = float64(flat[base+c])
		}
		out[i] = row
	}
	return out
}

func rowsF64(ptr *C.double, rows, cols C.uint) [][]float64 {
	flat := unsafe.Slice((*float64)(unsafe.Pointer(ptr)), int(rows)*int(cols))
	out := make([][]float64, rows)
	for i := range out {
		row := make([]float64, cols)
		copy(row, flat[int(i)*int(cols):int(i)*int(cols)+int(cols)])
		out[i] = row
	}
	return out
}

func vecF32(ptr *C.float, n C.uint) []float64 {
	flat := unsafe.Slice((*float32)(unsafe.Pointer(ptr)), int(n))
	out := make([]float64, len(flat))
	for i, v := range flat {
		out[i] = float64(v)
	}
	return out
}

func vecF64(ptr *C.double, n C.uint) []float64 {
	flat := unsafe.Slice((*float64)(unsafe.Pointer(ptr)), int(n))
	out := make([]float64, len(flat))
	copy(out, flat)
	return out
}

func lookup(h C.ulonglong) (engine.Engine, bool) {
	eng, ok := cgo.Handle(h).Value().(engine.Engine)
	return eng, ok
}

//export CreateSolver
func CreateSolver(params *C.solver_params) C.ulonglong {
	eng, err := engine.CreateEngine(buildSolverParams(params))
	if err != nil {
		return 0
	}
	return C.ulonglong(cgo.NewHandle(eng))
}

//export DeleteSolver
func DeleteSolver(h C.ulonglong) {
	handle := cgo.Handle(h)
	if eng, ok := handle.Value().(engine.Engine); ok {
		eng.Close()
	}
	handle.Delete()
}

func fitData(h C.ulonglong, X [][]float64, y []float64, sw []float64, fp sr.FitParams) C.int {
	eng, ok := lookup(h)
	if !ok {
		return 1
	}
	if err := eng.Fit(X, y, sw, fp, nil); err != nil {
		return 1
	}
	return 0
}

//export FitData32
func FitData32(h C.ulonglong, X *C.float, y *C.float, rows, xcols C.uint, params *C.fit_params, sw *C.float, swLen C.uint) C.int {
	var weight []float64
	if sw != nil && swLen == rows {
		weight = vecF32(sw, rows)
	}
	return fitData(h, rowsF32(X, rows, xcols), vecF32(y, rows), weight, buildFitParams(params, xcols))
}

//export FitData64
func FitData64(h C.ulonglong, X *C.double, y *C.double, rows, xcols C.uint, params *C.fit_params, sw *C.double, swLen C.uint) C.int {
	var weight []float64
	if sw != nil && swLen == rows {
		weight = vecF64(sw, rows)
	}
	return fitData(h, rowsF64(X, rows, xcols), vecF64(y, rows), weight, buildFitParams(params, xcols))
}

func predict(h C.ulonglong, X [][]float64, id uint64) ([]float64, C.int) {
	eng, ok := lookup(h)
	if !ok {
		return nil, 1
	}
	out, err := eng.Predict(X, id)
	if err != nil {
		return nil, 1
	}
	return out, 0
}

//export Predict32
func Predict32(h C.ulonglong, X *C.float, y *C.float, rows, xcols C.uint, params *C.predict_params) C.int {
	out, code := predict(h, rowsF32(X, rows, xcols), uint64(params.id))
	if code != 0 {
		return code
	}
	dst := unsafe.Slice((*float32)(unsafe.Pointer(y)), int(rows))
	for i, v := range out {
		dst[i] = float32(v)
	}
	return 0
}

//export Predict64
func Predict64(h C.ulonglong, X *C.double, y *C.double, rows, xcols C.uint, params *C.predict_params) C.int {
	out, code := predict(h, rowsF64(X, rows, xcols), uint64(params.id))
	if code != 0 {
		return code
	}
	dst := unsafe.Slice((*float64)(unsafe.Pointer(y)), int(rows))
	copy(dst, out)
	return 0
}

func fillModel(m engine.Model, out *C.math_model) {
	out.id = C.ulonglong(m.ID)
	out.score = C.double(m.Score)
	out.partial_score = C.double(m.PartialScore)
	out.str_representation = C.CString(m.Expression)
	out.str_code_representation = C.CString(m.GeneratedCode)
	out.used_constants_count = C.uint(len(m.UsedConstants))
	if len(m.UsedConstants) == 0 {
		out.used_constants = nil
		return
	}
	buf := (*C.double)(C.malloc(C.size_t(len(m.UsedConstants)) * C.size_t(unsafe.Sizeof(C.double(0)))))
	dst := unsafe.Slice((*float64)(unsafe.Pointer(buf)), len(m.UsedConstants))
	copy(dst, m.UsedConstants)
	out.used_constants = buf
}

//export GetBestModel
func GetBestModel(h C.ulonglong, model *C.math_model) C.int {
	eng, ok := lookup(h)
	if !ok {
		return 1
	}
	m, err := eng.GetBestModel()
	if err != nil {
		return 1
	}
	fillModel(m, model)
	return 0
}

//export GetModel
func GetModel(h C.ulonglong, id C.ulonglong, model *C.math_model) C.int {
	eng, ok := lookup(h)
	if !ok {
		return 1
	}
	m, err := eng.GetModelById(uint64(id))
	if err != nil {
		return 1
	}
	fillModel(m, model)
	return 0
}

//export FreeModel
func FreeModel(model *C.math_model) {
	if model.str_representation != nil {
		C.free(unsafe.Pointer(model.str_representation))
		model.str_representation = nil
	}
	if model.str_code_representation != nil {
		C.free(unsafe.Pointer(model.str_code_representation))
		model.str_code_representation = nil
	}
	if model.used_constants != nil {
		C.free(unsafe.Pointer(model.used_constants))
		model.used_constants = nil
	}
}

//export Xicor32
func Xicor32(X *C.float, y *C.float, rows C.uint) C.double {
	xf := unsafe.Slice((*float32)(unsafe.Pointer(X)), int(rows))
	yf := unsafe.Slice((*float32)(unsafe.Pointer(y)), int(rows))
	return C.double(xicor.Xicor(xf, yf))
}

//export Xicor64
func Xicor64(X *C.double, y *C.double, rows C.uint) C.double {
	xf := unsafe.Slice((*float64)(unsafe.Pointer(X)), int(rows))
	yf := unsafe.Slice((*float64)(unsafe.Pointer(y)), int(rows))
	return C.double(xicor.Xicor(xf, yf))
}

//export Pearson32
func Pearson32(X *C.float, y *C.float, rows C.uint) C.double {
	xf := unsafe.Slice((*float32)(unsafe.Pointer(X)), int(rows))
	yf := unsafe.Slice((*float32)(unsafe.Pointer(y)), int(rows))
	return C.double(xicor.Pearson(xf, yf))
}

//export Pearson64
func Pearson64(X *C.double, y *C.double, rows C.uint) C.double {
	xf := unsafe.Slice((*float64)(unsafe.Pointer(X)), int(rows))
	yf := unsafe.Slice((*float64)(unsafe.Pointer(y)), int(rows))
	return C.double(xicor.Pearson(xf, yf))
}

func main() {}
