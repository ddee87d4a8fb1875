package isel

import (
	"github.com/rillwright/rill/internal/diagnostics"
	"github.com/rillwright/rill/internal/flat"
	"github.com/rillwright/rill/internal/target"
	"github.com/rillwright/rill/internal/token"
	"github.com/rillwright/rill/internal/types"
)

// valueFlatType recovers the FlatType of a flat.Value: Temp looks it up
// in the function's temp table, ConstInt carries its own, ConstBool is
// always a single byte, and ConstString is always the two-field
// {Ptr,U16} representation internal/flat assigns CompString.
func (s *selector) valueFlatType(v flat.Value) flat.FlatType {
	switch vv := v.(type) {
	case flat.Temp:
		return s.fn.Temps[vv.Name]
	case flat.ConstInt:
		return vv.Type
	case flat.ConstBool:
		return flat.FBool{}
	case flat.ConstString:
		return flat.FStruct{Fields: []flat.FlatType{
			flat.FPtr{Elem: flat.FInt{Kind: types.U8}}, flat.FInt{Kind: types.U16},
		}}
	default:
		return nil
	}
}

// materializeW returns a wide register holding v's value, emitting a
// Load (for a frame-resident temp) or an Ldi (for a constant) first if
// v isn't already sitting in a pseudo register.
func (s *selector) materializeW(v flat.Value) (target.Wr, error) {
	switch vv := v.(type) {
	case flat.Temp:
		if s.fr.isFrameResident(vv.Name) {
			dst := s.newScratchW()
			off := s.fr.offsets[vv.Name]
			s.emit(target.LoadWI{Dst: dst, Base: target.Rf, Disp: target.WiConstant(off)})
			return dst, nil
		}
		r, ok := s.regW[vv.Name]
		if !ok {
			return 0, diagnostics.New(diagnostics.ErrInternalInvariant, token.Span{},
				"temp %s has no wide pseudo register in %s", vv.Name, s.fn.Name)
		}
		return r, nil
	case flat.ConstInt:
		dst := s.newScratchW()
		s.emit(target.LdiW{Dst: dst, Val: target.WiConstant(uint16(vv.Value))})
		return dst, nil
	case flat.ConstBool:
		dst := s.newScratchW()
		s.emit(target.LdiW{Dst: dst, Val: target.WiConstant(boolToInt(vv.Value))})
		return dst, nil
	default:
		return 0, diagnostics.New(diagnostics.ErrInternalInvariant, token.Span{},
			"value %v cannot be materialized as a wide register", v)
	}
}

// materializeB is materializeW's byte-width counterpart.
func (s *selector) materializeB(v flat.Value) (target.Br, error) {
	switch vv := v.(type) {
	case flat.Temp:
		if s.fr.isFrameResident(vv.Name) {
			dst := s.newScratchB()
			off := s.fr.offsets[vv.Name]
			s.emit(target.LoadBI{Dst: dst, Base: target.Rf, Disp: target.WiConstant(off)})
			return dst, nil
		}
		r, ok := s.regB[vv.Name]
		if !ok {
			return 0, diagnostics.New(diagnostics.ErrInternalInvariant, token.Span{},
				"temp %s has no byte pseudo register in %s", vv.Name, s.fn.Name)
		}
		return r, nil
	case flat.ConstInt:
		dst := s.newScratchB()
		s.emit(target.LdiB{Dst: dst, Val: target.Bi(vv.Value)})
		return dst, nil
	case flat.ConstBool:
		dst := s.newScratchB()
		s.emit(target.LdiB{Dst: dst, Val: target.Bi(boolToInt(vv.Value))})
		return dst, nil
	default:
		return 0, diagnostics.New(diagnostics.ErrInternalInvariant, token.Span{},
			"value %v cannot be materialized as a byte register", v)
	}
}

func boolToInt(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}

// isWide reports whether v's natural representation is a wide (not
// byte) register, by consulting its FlatType's size.
func (s *selector) isWide(v flat.Value) bool {
	ft := s.valueFlatType(v)
	if ft == nil {
		return true
	}
	return flat.Sizeof(ft) > 1
}

// destW/destB resolve Dst to its pseudo register, whether or not it is
// frame-resident; a frame-resident destination returns a scratch
// register that the caller must Store back after writing it (see
// storeResult).
func (s *selector) destW(name string) target.Wr {
	if s.fr.isFrameResident(name) {
		return s.newScratchW()
	}
	return s.regW[name]
}

func (s *selector) destB(name string) target.Br {
	if s.fr.isFrameResident(name) {
		return s.newScratchB()
	}
	return s.regB[name]
}

// storeResult writes a just-computed destination register back to its
// frame slot, if Dst is frame-resident; a no-op for register-resident
// destinations, which were already written in place.
func (s *selector) storeResultW(name string, r target.Wr) {
	if !s.fr.isFrameResident(name) {
		return
	}
	s.emit(target.StoreWI{Base: target.Rf, Disp: target.WiConstant(s.fr.offsets[name]), Src: r})
}

func (s *selector) storeResultB(name string, r target.Br) {
	if !s.fr.isFrameResident(name) {
		return
	}
	s.emit(target.StoreBI{Base: target.Rf, Disp: target.WiConstant(s.fr.offsets[name]), Src: r})
}
