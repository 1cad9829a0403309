package script

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"
	"worldcell/internal/phase"
	"worldcell/internal/rng"
	"worldcell/internal/worldmodel"
)

// operationLimit bounds the number of host-builtin calls a single rule may
// make against one cell. gopher-lua does not expose a public bytecode
// instruction counter, so the budget is enforced at the builtin boundary
// (every set/log/rand/math/neighbor call consumes one unit).
const operationLimit = 100_000

type sandbox struct {
	budget    int
	mutations []phase.Mutation
	rng       *rng.Source
}

func (s *sandbox) charge(L *lua.LState) bool {
	s.budget--
	if s.budget < 0 {
		L.RaiseError("operation limit exceeded")
		return false
	}
	return true
}

// run executes one compiled rule against one cell, returning the
// mutations it recorded via set(). A Lua runtime error (including budget
// exhaustion) surfaces as a Go error for the caller to wrap in a RuleError.
func run(rule *Rule, cell worldmodel.Tile, neighbors []worldmodel.Tile, ctx phase.EvalContext) (muts []phase.Mutation, err error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	// Only safe, pure libraries: base (minus io/os) plus string, math and table.
	for _, pair := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
		{lua.TabLibName, lua.OpenTable},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(pair.fn), NRet: 0, Protect: true}, lua.LString(pair.name)); err != nil {
			return nil, fmt.Errorf("script: opening library %s: %w", pair.name, err)
		}
	}
	stripUnsafeBaseGlobals(L)

	box := &sandbox{budget: operationLimit, rng: ctx.RNG}

	L.SetGlobal("tile", tileToTable(L, cell))
	nbTable := L.NewTable()
	for _, n := range neighbors {
		nbTable.Append(tileToTable(L, n))
	}
	L.SetGlobal("neighbors", nbTable)
	L.SetGlobal("season", lua.LString(string(ctx.Season)))
	L.SetGlobal("tick", lua.LNumber(ctx.Tick))

	registerBuiltins(L, box)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script: panic: %v", r)
		}
	}()

	fn := L.NewFunctionFromProto(rule.proto)
	L.Push(fn)
	if callErr := L.PCall(0, lua.MultRet, nil); callErr != nil {
		return nil, callErr
	}

	return box.mutations, nil
}

// stripUnsafeBaseGlobals removes base-library entries that would give
// scripts I/O or host filesystem access beyond the sandbox contract.
func stripUnsafeBaseGlobals(L *lua.LState) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "collectgarbage", "print"} {
		L.SetGlobal(name, lua.LNil)
	}
}

func tileToTable(L *lua.LState, t worldmodel.Tile) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("id", lua.LNumber(t.ID))

	geology := L.NewTable()
	geology.RawSetString("terrain", lua.LString(t.Geology.Terrain))
	geology.RawSetString("elevation", lua.LNumber(t.Geology.Elevation))
	geology.RawSetString("drainage", lua.LNumber(t.Geology.Drainage))
	tbl.RawSetString("geology", geology)

	climate := L.NewTable()
	climate.RawSetString("zone", lua.LString(t.Climate.Zone))
	climate.RawSetString("base_temperature", lua.LNumber(t.Climate.BaseTemperature))
	climate.RawSetString("latitude", lua.LNumber(t.Climate.Latitude))
	tbl.RawSetString("climate", climate)

	biome := L.NewTable()
	biome.RawSetString("kind", lua.LString(t.Biome.Kind))
	biome.RawSetString("vegetation_density", lua.LNumber(t.Biome.VegetationDensity))
	biome.RawSetString("vegetation_health", lua.LNumber(t.Biome.VegetationHealth))
	biome.RawSetString("transition_pressure", lua.LNumber(t.Biome.TransitionPressure))
	biome.RawSetString("ticks_in_current_biome", lua.LNumber(t.Biome.TicksInCurrentBiome))
	tbl.RawSetString("biome", biome)

	weather := L.NewTable()
	weather.RawSetString("temperature", lua.LNumber(t.Weather.Temperature))
	weather.RawSetString("humidity", lua.LNumber(t.Weather.Humidity))
	weather.RawSetString("cloud_cover", lua.LNumber(t.Weather.CloudCover))
	weather.RawSetString("wind_speed", lua.LNumber(t.Weather.WindSpeed))
	weather.RawSetString("wind_direction", lua.LNumber(t.Weather.WindDirection))
	weather.RawSetString("precipitation", lua.LNumber(t.Weather.Precipitation))
	weather.RawSetString("storm_intensity", lua.LNumber(t.Weather.StormIntensity))
	weather.RawSetString("pressure", lua.LNumber(t.Weather.Pressure))
	tbl.RawSetString("weather", weather)

	conditions := L.NewTable()
	conditions.RawSetString("soil_moisture", lua.LNumber(t.Conditions.SoilMoisture))
	conditions.RawSetString("snow_depth", lua.LNumber(t.Conditions.SnowDepth))
	conditions.RawSetString("mud_level", lua.LNumber(t.Conditions.MudLevel))
	conditions.RawSetString("flood_level", lua.LNumber(t.Conditions.FloodLevel))
	conditions.RawSetString("frost_days", lua.LNumber(t.Conditions.FrostDays))
	conditions.RawSetString("drought_days", lua.LNumber(t.Conditions.DroughtDays))
	conditions.RawSetString("fire_risk", lua.LNumber(t.Conditions.FireRisk))
	tbl.RawSetString("conditions", conditions)

	position := L.NewTable()
	position.RawSetString("lat", lua.LNumber(t.Position.Lat))
	position.RawSetString("lon", lua.LNumber(t.Position.Lon))
	tbl.RawSetString("position", position)

	return tbl
}

func registerBuiltins(L *lua.LState, box *sandbox) {
	reg := func(name string, fn lua.LGFunction) {
		L.SetGlobal(name, L.NewFunction(fn))
	}

	reg("set", func(L *lua.LState) int {
		if !box.charge(L) {
			return 0
		}
		field := L.CheckString(1)
		value := fromLua(L.Get(2))
		box.mutations = append(box.mutations, phase.Mutation{Field: field, Value: value})
		return 0
	})

	reg("log", func(L *lua.LState) int {
		box.charge(L)
		return 0
	})

	reg("rand", func(L *lua.LState) int {
		if !box.charge(L) {
			return 0
		}
		L.Push(lua.LNumber(box.rng.Float64()))
		return 1
	})

	reg("rand_range", func(L *lua.LState) int {
		if !box.charge(L) {
			return 0
		}
		lo := L.CheckNumber(1)
		hi := L.CheckNumber(2)
		L.Push(lua.LNumber(box.rng.Range(float64(lo), float64(hi))))
		return 1
	})

	reg("sin_deg", mathUnary(box, func(v float64) float64 { return math.Sin(v * math.Pi / 180) }))
	reg("cos_deg", mathUnary(box, func(v float64) float64 { return math.Cos(v * math.Pi / 180) }))
	reg("sqrt", mathUnary(box, math.Sqrt))
	reg("abs", mathUnary(box, math.Abs))

	reg("clamp", func(L *lua.LState) int {
		if !box.charge(L) {
			return 0
		}
		v, lo, hi := float64(L.CheckNumber(1)), float64(L.CheckNumber(2)), float64(L.CheckNumber(3))
		if v < lo {
			v = lo
		}
		if v > hi {
			v = hi
		}
		L.Push(lua.LNumber(v))
		return 1
	})

	reg("neighbor_avg", neighborAggregate(box, func(vals []float64) float64 {
		if len(vals) == 0 {
			return 0
		}
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		return sum / float64(len(vals))
	}))
	reg("neighbor_sum", neighborAggregate(box, func(vals []float64) float64 {
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		return sum
	}))
	reg("neighbor_max", neighborAggregate(box, func(vals []float64) float64 {
		max := math.Inf(-1)
		for _, v := range vals {
			if v > max {
				max = v
			}
		}
		if math.IsInf(max, -1) {
			return 0
		}
		return max
	}))

	reg("wind_align", func(L *lua.LState) int {
		if !box.charge(L) {
			return 0
		}
		fx, fy := float64(L.CheckNumber(1)), float64(L.CheckNumber(2))
		tx, ty := float64(L.CheckNumber(3)), float64(L.CheckNumber(4))
		dir := float64(L.CheckNumber(5))
		bearing := math.Atan2(tx-fx, ty-fy) * 180 / math.Pi
		if bearing < 0 {
			bearing += 360
		}
		delta := dir - bearing
		for delta > 180 {
			delta -= 360
		}
		for delta < -180 {
			delta += 360
		}
		L.Push(lua.LNumber(math.Cos(delta * math.Pi / 180)))
		return 1
	})

	reg("direction_to", func(L *lua.LState) int {
		if !box.charge(L) {
			return 0
		}
		fx, fy := float64(L.CheckNumber(1)), float64(L.CheckNumber(2))
		tx, ty := float64(L.CheckNumber(3)), float64(L.CheckNumber(4))
		bearing := math.Atan2(tx-fx, ty-fy) * 180 / math.Pi
		if bearing < 0 {
			bearing += 360
		}
		L.Push(lua.LNumber(bearing))
		return 1
	})
}

func mathUnary(box *sandbox, f func(float64) float64) lua.LGFunction {
	return func(L *lua.LState) int {
		if !box.charge(L) {
			return 0
		}
		v := float64(L.CheckNumber(1))
		L.Push(lua.LNumber(f(v)))
		return 1
	}
}

// neighborAggregate implements neighbor_avg/sum/max(neighbors, "layer.field").
func neighborAggregate(box *sandbox, reduce func([]float64) float64) lua.LGFunction {
	return func(L *lua.LState) int {
		if !box.charge(L) {
			return 0
		}
		tbl := L.CheckTable(1)
		path := L.CheckString(2)

		var vals []float64
		tbl.ForEach(func(_ lua.LValue, v lua.LValue) {
			if nt, ok := v.(*lua.LTable); ok {
				if num, ok := lookupPath(nt, path); ok {
					vals = append(vals, num)
				}
			}
		})
		L.Push(lua.LNumber(reduce(vals)))
		return 1
	}
}

func lookupPath(t *lua.LTable, path string) (float64, bool) {
	cur := lua.LValue(t)
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '.' {
			seg := path[start:i]
			tbl, ok := cur.(*lua.LTable)
			if !ok {
				return 0, false
			}
			cur = tbl.RawGetString(seg)
			start = i + 1
		}
	}
	if num, ok := cur.(lua.LNumber); ok {
		return float64(num), true
	}
	return 0, false
}

func fromLua(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LNumber:
		return float64(val)
	case lua.LString:
		return string(val)
	case lua.LBool:
		return bool(val)
	default:
		return v.String()
	}
}
