//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"ncdc/internal/adapter/cache"
	"ncdc/internal/adapter/classifier"
	"ncdc/internal/adapter/compressor"
	"ncdc/internal/adapter/dataset"
	"ncdc/internal/adapter/distance"
	"ncdc/internal/domain"
)

var (
	corpus  domain.Corpus
	engine  *distance.Engine
	builder *distance.Builder
	clf     *classifier.Classifier[string]
)

func init() {
	comp, err := compressor.New(compressor.Default, -1)
	if err != nil {
		panic(err)
	}
	engine = distance.NewEngine(comp)
	// One worker: goroutines gain nothing without threads under wasm. The
	// in-memory cache carries reference lengths across classify calls;
	// bbolt does not build for js/wasm.
	builder = distance.NewBuilder(engine, 1, cache.NewLengthCache(0))

	clf, err = classifier.New[string](classifier.TieBreakDecrement, nil)
	if err != nil {
		panic(err)
	}
}

func main() {
	c := make(chan struct{})

	js.Global().Set("ncdcTrain", js.FuncOf(trainSample))
	js.Global().Set("ncdcClassify", js.FuncOf(classifyText))
	js.Global().Set("ncdcClear", js.FuncOf(clearCorpus))
	js.Global().Set("ncdcStats", js.FuncOf(getStats))

	<-c
}

func trainSample(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("usage: ncdcTrain(label, text)")
	}

	label := args[0].String()
	text := dataset.Normalize(args[1].String(), dataset.Options{})
	if label == "" || text == "" {
		return makeError("label and text must be non-empty")
	}

	corpus = append(corpus, domain.Sample{Text: text, Label: label})

	return makeResult(map[string]interface{}{
		"success": true,
		"samples": len(corpus),
	})
}

func classifyText(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: ncdcClassify(text, [k])")
	}
	if len(corpus) == 0 {
		return makeError("corpus is empty - call ncdcTrain first")
	}

	text := dataset.Normalize(args[0].String(), dataset.Options{})
	k := 2
	if len(args) > 1 {
		k = args[1].Int()
	}
	if k < 1 {
		k = 1
	}
	if k > len(corpus) {
		k = len(corpus)
	}

	vec, err := builder.Vector(text, corpus.Texts(), nil)
	if err != nil {
		return makeError("distance computation failed: " + err.Error())
	}

	label, err := clf.Classify(vec, corpus.Labels(), k)
	if err != nil {
		return makeError("classification failed: " + err.Error())
	}

	nearest := make([]map[string]interface{}, 0, k)
	for _, idx := range classifier.Neighbours(vec, k) {
		nearest = append(nearest, map[string]interface{}{
			"label":    corpus[idx].Label,
			"distance": vec[idx],
		})
	}

	return makeResult(map[string]interface{}{
		"label":   label,
		"k":       k,
		"nearest": nearest,
	})
}

func clearCorpus(this js.Value, args []js.Value) interface{} {
	corpus = nil
	return makeResult(map[string]interface{}{
		"success": true,
	})
}

func getStats(this js.Value, args []js.Value) interface{} {
	perLabel := make(map[string]interface{}, len(corpus))
	for _, s := range corpus {
		n, _ := perLabel[s.Label].(int)
		perLabel[s.Label] = n + 1
	}

	return makeResult(map[string]interface{}{
		"samples":    len(corpus),
		"labels":     perLabel,
		"compressor": engine.Compressor().Name(),
	})
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
