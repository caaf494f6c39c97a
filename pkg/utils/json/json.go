package json

import "github.com/bytedance/sonic"

// Drop-in encoding/json replacements backed by sonic.
var (
	Marshal       = sonic.Marshal
	MarshalIndent = sonic.MarshalIndent
	Unmarshal     = sonic.Unmarshal
	MarshalString = sonic.MarshalString
)
