package engine

import (
	"math"

	"github.com/mverlet/pairjit/internal/geom"
)

// value carries a function result across the call boundary. The caller
// knows the result bank statically and reads the matching field.
type value struct {
	f  float32
	u  uint32
	bl bool
	v  geom.Vec3
	q  geom.Quat
}

// run executes a compiled body against a frame and returns the ret value.
// The loop has no error path: after verification every slot index, pc
// target and callee is known good, and arithmetic follows IEEE semantics.
func (e *Engine) run(c *codeObj, fr *frame) value {
	pc := 0
	for {
		in := &c.ops[pc]
		switch in.op {
		case vmFConst:
			fr.f[in.dst] = in.f
		case vmUConst:
			fr.u[in.dst] = in.u

		case vmFAdd:
			fr.f[in.dst] = fr.f[in.a] + fr.f[in.b]
		case vmFSub:
			fr.f[in.dst] = fr.f[in.a] - fr.f[in.b]
		case vmFMul:
			fr.f[in.dst] = fr.f[in.a] * fr.f[in.b]
		case vmFDiv:
			fr.f[in.dst] = fr.f[in.a] / fr.f[in.b]
		case vmFNeg:
			fr.f[in.dst] = -fr.f[in.a]

		case vmIntr:
			fr.f[in.dst] = intrinsic(in.u, fr.f[in.a])
		case vmPow:
			fr.f[in.dst] = float32(math.Pow(float64(fr.f[in.a]), float64(fr.f[in.b])))
		case vmMin:
			fr.f[in.dst] = float32(math.Min(float64(fr.f[in.a]), float64(fr.f[in.b])))
		case vmMax:
			fr.f[in.dst] = float32(math.Max(float64(fr.f[in.a]), float64(fr.f[in.b])))

		case vmVAdd:
			fr.v[in.dst] = fr.v[in.a].Add(fr.v[in.b])
		case vmVSub:
			fr.v[in.dst] = fr.v[in.a].Sub(fr.v[in.b])
		case vmScale:
			fr.v[in.dst] = fr.v[in.a].Scale(fr.f[in.b])
		case vmDot:
			fr.f[in.dst] = geom.Dot(fr.v[in.a], fr.v[in.b])
		case vmCross:
			fr.v[in.dst] = geom.Cross(fr.v[in.a], fr.v[in.b])
		case vmNorm:
			fr.f[in.dst] = fr.v[in.a].Norm()
		case vmNormalize:
			fr.v[in.dst] = fr.v[in.a].Normalize()
		case vmElem:
			v := fr.v[in.a]
			switch in.c {
			case 0:
				fr.f[in.dst] = v.X
			case 1:
				fr.f[in.dst] = v.Y
			default:
				fr.f[in.dst] = v.Z
			}

		case vmQMul:
			fr.q[in.dst] = geom.QMul(fr.q[in.a], fr.q[in.b])
		case vmQConj:
			fr.q[in.dst] = fr.q[in.a].Conj()
		case vmRotate:
			fr.v[in.dst] = geom.Rotate(fr.q[in.a], fr.v[in.b])
		case vmQElem:
			q := fr.q[in.a]
			switch in.c {
			case 0:
				fr.f[in.dst] = q.X
			case 1:
				fr.f[in.dst] = q.Y
			case 2:
				fr.f[in.dst] = q.Z
			default:
				fr.f[in.dst] = q.W
			}

		case vmIAdd:
			fr.u[in.dst] = fr.u[in.a] + fr.u[in.b]
		case vmIEq:
			fr.b[in.dst] = fr.u[in.a] == fr.u[in.b]
		case vmINe:
			fr.b[in.dst] = fr.u[in.a] != fr.u[in.b]
		case vmILt:
			fr.b[in.dst] = fr.u[in.a] < fr.u[in.b]
		case vmU2F:
			fr.f[in.dst] = float32(fr.u[in.a])

		case vmFEq:
			fr.b[in.dst] = fr.f[in.a] == fr.f[in.b]
		case vmFLt:
			fr.b[in.dst] = fr.f[in.a] < fr.f[in.b]
		case vmFLe:
			fr.b[in.dst] = fr.f[in.a] <= fr.f[in.b]
		case vmFGt:
			fr.b[in.dst] = fr.f[in.a] > fr.f[in.b]
		case vmFGe:
			fr.b[in.dst] = fr.f[in.a] >= fr.f[in.b]

		case vmSelF:
			if fr.b[in.a] {
				fr.f[in.dst] = fr.f[in.b]
			} else {
				fr.f[in.dst] = fr.f[in.c]
			}
		case vmSelU:
			if fr.b[in.a] {
				fr.u[in.dst] = fr.u[in.b]
			} else {
				fr.u[in.dst] = fr.u[in.c]
			}
		case vmSelB:
			if fr.b[in.a] {
				fr.b[in.dst] = fr.b[in.b]
			} else {
				fr.b[in.dst] = fr.b[in.c]
			}
		case vmSelV:
			if fr.b[in.a] {
				fr.v[in.dst] = fr.v[in.b]
			} else {
				fr.v[in.dst] = fr.v[in.c]
			}
		case vmSelQ:
			if fr.b[in.a] {
				fr.q[in.dst] = fr.q[in.b]
			} else {
				fr.q[in.dst] = fr.q[in.c]
			}

		case vmCall:
			callee := e.fns[in.fn]
			cc := e.materialize(callee)
			cfr := cc.getFrame()
			var counts [numBanks]uint16
			for _, a := range in.args {
				// Parameters occupy the leading slots of each bank in
				// declaration order, matching the verifier's allocation.
				switch a.bank {
				case bankF:
					cfr.f[counts[bankF]] = fr.f[a.src]
				case bankU:
					cfr.u[counts[bankU]] = fr.u[a.src]
				case bankB:
					cfr.b[counts[bankB]] = fr.b[a.src]
				case bankV:
					cfr.v[counts[bankV]] = fr.v[a.src]
				case bankQ:
					cfr.q[counts[bankQ]] = fr.q[a.src]
				}
				counts[a.bank]++
			}
			rv := e.run(cc, cfr)
			cc.frames.Put(cfr)
			switch bank(in.c) {
			case bankF:
				fr.f[in.dst] = rv.f
			case bankU:
				fr.u[in.dst] = rv.u
			case bankB:
				fr.b[in.dst] = rv.bl
			case bankV:
				fr.v[in.dst] = rv.v
			case bankQ:
				fr.q[in.dst] = rv.q
			}

		case vmJmp:
			pc = int(in.a)
			continue
		case vmCbr:
			if fr.b[in.a] {
				pc = int(in.b)
			} else {
				pc = int(in.c)
			}
			continue

		case vmRet:
			var rv value
			switch bank(in.c) {
			case bankF:
				rv.f = fr.f[in.a]
			case bankU:
				rv.u = fr.u[in.a]
			case bankB:
				rv.bl = fr.b[in.a]
			case bankV:
				rv.v = fr.v[in.a]
			case bankQ:
				rv.q = fr.q[in.a]
			}
			return rv
		}
		pc++
	}
}
