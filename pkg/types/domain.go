package types

// Model represents a discoverable or loadable LLM model on disk.
type Model struct {
	// Stable identifier for the model.
	// example: tinyllama-q4
	ID string `json:"id" example:"tinyllama-q4"`
	// Human-friendly name.
	// example: TinyLlama (Q4)
	Name string `json:"name" example:"TinyLlama (Q4)"`
	// Absolute path to the model file on disk.
	// example: /home/user/models/TinyLlama.Q4_K_M.gguf
	Path string `json:"path" example:"/home/user/models/TinyLlama.Q4_K_M.gguf"`
	// Quantization mode tag from model metadata (mxfp4, mxfp8, nvfp4, or
	// anything else for affine schemes).
	// example: mxfp4
	Quant string `json:"quant,omitempty" example:"mxfp4"`
	// Quantization group size (elements per scale factor). 0 means unknown.
	// example: 32
	GroupSize int `json:"group_size,omitempty" example:"32"`
	// Quantization bit width. 0 means unknown.
	// example: 4
	Bits int `json:"bits,omitempty" example:"4"`
	// Trailing dimension of the weight tensors, used for group-size
	// compatibility checks. 0 means unknown.
	// example: 4096
	HiddenDim int `json:"hidden_dim,omitempty" example:"4096"`
	// Optional family (e.g., llama, mistral, phi).
	// example: llama
	Family string `json:"family,omitempty" example:"llama"`
}
