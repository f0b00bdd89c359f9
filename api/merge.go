package api

import (
	"github.com/valyala/fastjson"
)

// mergePatch applies patch to target following JSON Merge Patch (RFC 7386) and
// returns the result. Objects merge recursively, a null member deletes the key and
// any other value replaces it. Members keep their position in target; new members
// are appended in the order patch declares them.
func mergePatch(target, patch *fastjson.Value, a *fastjson.Arena) *fastjson.Value {
	if patch.Type() != fastjson.TypeObject {
		return patch
	}
	if target == nil || target.Type() != fastjson.TypeObject {
		target = a.NewObject()
	}

	obj, _ := patch.Object()
	obj.Visit(func(k []byte, v *fastjson.Value) {
		key := string(k)
		if v.Type() == fastjson.TypeNull {
			target.Del(key)
			return
		}
		target.Set(key, mergePatch(target.Get(key), v, a))
	})
	return target
}

// mergeSchema applies the merge patch in patch to the schema document existing.
func mergeSchema(existing, patch []byte) ([]byte, error) {
	var p, pp fastjson.Parser
	target, err := p.ParseBytes(existing)
	if err != nil {
		return nil, err
	}
	update, err := pp.ParseBytes(patch)
	if err != nil {
		return nil, err
	}

	var a fastjson.Arena
	return mergePatch(target, update, &a).MarshalTo(nil), nil
}
