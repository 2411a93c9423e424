package siglower

// Arg is one argument's contribution to a RegisterSignature: its lowered
// FullType plus the MemberMode/DataFlow tags recorded on it.
type Arg struct {
	Type *FullType
	Mode MemberMode
	Flow DataFlow
}

// RegisterSignature is the ordered list of FullTypes for a call's
// arguments, with descriptors laid out in non-overlapping, contiguous
// register ranges: each Add call grows a running index so the next
// argument's range starts right after the previous one's.
type RegisterSignature struct {
	args  []Arg
	index int
}

// NewRegisterSignature returns an empty RegisterSignature.
func NewRegisterSignature() *RegisterSignature {
	return &RegisterSignature{}
}

// Add appends an argument, binding its FullType's contiguous slot range to
// start immediately after the previous argument's range.
func (rs *RegisterSignature) Add(mode MemberMode, flow DataFlow, ft *FullType) {
	ft.AddStart(rs.index)
	rs.index += ft.RegisterCount()
	rs.args = append(rs.args, Arg{Type: ft, Mode: mode, Flow: flow})
}

// Args returns the ordered arguments of this signature.
func (rs *RegisterSignature) Args() []Arg {
	return rs.args
}

// At returns the i-th argument.
func (rs *RegisterSignature) At(i int) Arg {
	return rs.args[i]
}

// Len returns the number of arguments.
func (rs *RegisterSignature) Len() int {
	return len(rs.args)
}

// TotalRegisters returns the total number of register slots spanned by this
// signature.
func (rs *RegisterSignature) TotalRegisters() int {
	return rs.index
}
