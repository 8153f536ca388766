package source

import (
	"encoding/json"
	"regexp"
	"strings"
)

type translation struct {
	korean  string
	english string
}

// specFieldTranslations renames whole specification keys.
var specFieldTranslations = []translation{
	{"출력", "Output"},
	{"년식", "Year"},
	{"사양", "Specification"},
	{"사용전압", "Voltage"},
	{"사용전원", "Power Supply"},
	{"총장(mm)", "Total Length (mm)"},
	{"입력 전원", "Input Power"},
	{"스트로크", "Stroke"},
	{"길이", "Length"},
	{"2상", "2 Phase"},
	{"5상", "5 Phase"},
	{"감속비", "Reduction Ratio"},
	{"센서 길이(약)", "Sensor Length (approx)"},
	{"외경 (mm)", "Outer Diameter (mm)"},
	{"내경1 (mm)", "Inner Diameter 1 (mm)"},
	{"상(Phase)", "Phase"},
	{"감속기", "Reducer"},
	{"외형 치수", "External Dimensions"},
	{"LM블럭 치수", "LM Block Dimensions"},
	{"드라이버", "Driver"},
	{"스트로크(mm)", "Stroke (mm)"},
	{"설명", "Description"},
	{"비고", "Note"},
	{"블럭 수", "Block Count"},
	{"블럭수(EA)", "Block Count (EA)"},
	{"블럭수 (EA)", "Block Count (EA)"},
	{"브레이크", "Brake"},
	{"크기(mm)", "Size (mm)"},
	{"행정거리(mm)", "Stroke Distance (mm)"},
	{"전원 및 사양", "Power and Specifications"},
	{"시리얼", "Serial"},
	{"드라이버/시리얼컨버터", "Driver/Serial Converter"},
	{"적용모터", "Applied Motor"},
	{"길이(mm)", "Length (mm)"},
	{"베어링(EA)", "Bearing (EA)"},
	{"모터", "Motor"},
	{"리드(mm)", "Lead (mm)"},
	{"리드", "Lead"},
	{"출력(KW)", "Output (KW)"},
	{"케이블", "Cable"},
	{"동작Condition", "Operation Condition"},
	{"감속비(Ratio)", "Reduction Ratio"},
	{"적용 Wafer", "Applied Wafer"},
	{"전원및 상양", "Power and Specifications"},
	{"사이즈(mm)", "Size (mm)"},
	{"전원", "Power"},
	{"외관 Condition", "Appearance Condition"},
	{"동작 여부", "Operation Status"},
	{"엔코더케이블", "Encoder Cable"},
	{"조명", "Lighting"},
	{"렌즈 아답터", "Lens Adapter"},
	{"레일길이(mm)", "Rail Length (mm)"},
	{"전압", "Voltage"},
	{"특징", "Features"},
	{"배율렌즈", "Magnification Lens"},
	{"렌즈회전", "Lens Rotation"},
	{"스트로크 X", "Stroke X"},
	{"티칭팬던트", "Teaching Pendant"},
	{"알파스텝지원", "Alpha Step Support"},
	{"47각", "47 Angle"},
	{"기타", "Other"},
	{"화이버센서", "Fiber Sensor"},
	{"상세스펙", "Detailed Specs"},
	{"CCD카메라", "CCD Camera"},
	{"드라이버(X,Y)", "Driver (X,Y)"},
	{"모터(X,Y)", "Motor (X,Y)"},
	{"조명+렌즈", "Lighting + Lens"},
	{"브레이크타입", "Brake Type"},
	{"입력", "Input"},
	{"A:총길이(mm)", "A: Total Length (mm)"},
	{"B:스크류길이(mm)", "B: Screw Length (mm)"},
	{"A:총 길이(mm)", "A: Total Length (mm)"},
	{"A;총 길이(mm)", "A: Total Length (mm)"},
	{"B:레일 폭(mm)", "B: Rail Width (mm)"},
	{"A:레일 총\n길이(mm)", "A: Rail Total Length (mm)"},
	{"A:레일 총   \n길이(mm)", "A: Rail Total Length (mm)"},
	{"A:레일 총   \n 길이(mm)", "A: Rail Total Length (mm)"},
	{"A:레일 총    \n 길이(mm)", "A: Rail Total Length (mm)"},
	{"X-Axis(주행축)", "X-Axis (Travel Axis)"},
}

// specValueTranslations are replaced inside values in order, so longer phrases
// come before the words they contain.
var specValueTranslations = []translation{
	{"볼스크류", "Ball Screw"},
	{"기본베이스 입출력 모듈 6Pcs  장착 가능", "Basic base I/O module, 6pcs mountable"},
	{"없음", "None"},
	{"있음", "Yes"},
	{"양호", "Good"},
	{"보통", "Normal"},
	{"우수", "Excellent"},
	{"사용가능", "Usable"},
	{"신품", "New"},
	{"중고", "Used"},
	{"미사용", "Unused"},
	{"미상", "Unknown"},
	{"Unused 새제품", "Unused (New Product)"},
	{"Unused 박스", "Unused (Boxed)"},
	{"노이즈 필터", "Noise Filter"},
	{"AC모터,기어드모터 감속기", "AC Motor, Geared Motor Reducer"},
	{"AIR 실린더(가이드형)", "AIR Cylinder (Guided Type)"},
	{"솔레노이드밸브", "Solenoid Valve"},
	{"컨트롤러", "Controller"},
	{"AC모터,기어드모터", "AC Motor, Geared Motor"},
	{"AC모터 감속기", "AC Motor Reducer"},
	{"센서", "Sensor"},
	{"인버터", "Inverter"},
	{"통신모듈", "Communication Module"},
	{"AC모터", "AC Motor"},
	{"1축 엑츄에이터", "Single-Axis Actuator"},
	{"LM가이드", "LM Guide"},
	{"LM 가이드", "LM Guide"},
	{"AIR 실린더(회전ROTARY)", "AIR Cylinder (Rotary)"},
	{"AREA SENSOR 센서", "AREA Sensor"},
	{"카메라", "Camera"},
	{"모터", "Motor"},
	{"드라이버", "Driver"},
	{"광파이버 센서", "Fiber Optic Sensor"},
	{"근접센서", "Proximity Sensor"},
	{"광전센서", "Photoelectric Sensor"},
	{"압력센서", "Pressure Sensor"},
	{"레이저센서", "Laser Sensor"},
	{"DC모터", "DC Motor"},
	{"브레이크", "Brake"},
	{"케이블", "Cable"},
	{"커넥터", "Connector"},
	{"스위치", "Switch"},
	{"릴레이", "Relay"},
	{"전원공급장치", "Power Supply"},
	{"변압기", "Transformer"},
	{"접촉기", "Contactor"},
	{"차단기", "Circuit Breaker"},
	{"퓨즈", "Fuse"},
	{"AIR 실린더", "Air Cylinder"},
	{"실린더", "Cylinder"},
	{"밸브", "Valve"},
	{"진공발생기", "Vacuum Generator"},
	{"진공패드", "Vacuum Pad"},
	{"에어필터", "Air Filter"},
	{"레귤레이터", "Regulator"},
	{"윤활장치", "Lubricator"},
	{"매니폴드", "Manifold"},
	{"그리퍼", "Gripper"},
	{"로봇핸드", "Robot Hand"},
	{"리니어부시", "Linear Bushing"},
	{"볼 부시", "Ball Bushing"},
	{"리니어베어링", "Linear Bearing"},
	{"슬라이드테이블", "Slide Table"},
	{"XY테이블", "XY Table"},
	{"리니어액츄에이터", "Linear Actuator"},
	{"전동실린더", "Electric Cylinder"},
	{"터치패널", "Touch Panel"},
	{"표시기", "Display"},
	{"계측기", "Measuring Instrument"},
	{"로봇", "Robot"},
	{"조명", "Lighting"},
	{"렌즈", "Lens"},
	{"비전시스템", "Vision System"},
}

// makerTranslations are appended to Korean maker names in parentheses.
var makerTranslations = []translation{
	{"오리엔탈모터", "Oriental Motor"},
	{"한국오므론", "Korea Omron"},
	{"엘에스산전", "LS Electric"},
	{"파나소닉", "Panasonic"},
	{"미쓰비시", "Mitsubishi"},
	{"야스카와", "Yaskawa"},
	{"도시바", "Toshiba"},
	{"후지전기", "Fuji Electric"},
	{"산요전기", "Sanyo Denki"},
	{"니혼펄스", "Nihon Pulse"},
}

var hangul = regexp.MustCompile(`[\x{AC00}-\x{D7AF}]`)

var (
	specFieldIndex = indexTranslations(specFieldTranslations)
	makerIndex     = indexTranslations(makerTranslations)
)

func indexTranslations(table []translation) map[string]string {
	index := make(map[string]string, len(table))
	for _, t := range table {
		index[t.korean] = t.english
	}
	return index
}

func replaceValueTerms(s string) string {
	for _, t := range specValueTranslations {
		s = strings.ReplaceAll(s, t.korean, t.english)
	}
	return s
}

// TranslateSpecifications renders known Korean specification keys and values
// in English. Korean maker names keep their original spelling with the English
// name in parentheses, e.g. "미쓰비시 (Mitsubishi)". Non-string values are left
// as they are. Blobs that need no translation or cannot be parsed are returned
// unchanged.
func TranslateSpecifications(raw string) string {
	if strings.TrimSpace(raw) == "" || strings.TrimSpace(raw) == "{}" {
		return raw
	}

	pairs, ok := decodePairs(raw)
	if !ok {
		return raw
	}

	changed := false
	translated := newOrderedSpecs()
	for _, pair := range pairs {
		key := pair.key
		if english, ok := specFieldIndex[key]; ok {
			key = english
			changed = true
		}

		value := pair.value
		var text string
		if err := json.Unmarshal(pair.value, &text); err == nil {
			if next := translateValue(pair.key, text); next != text {
				value = quote(next)
				changed = true
			}
		}

		translated.set(key, value)
	}

	if !changed {
		return raw
	}
	return translated.encode()
}

func translateValue(key, value string) string {
	if key != "MAKER" {
		return replaceValueTerms(value)
	}
	if !hangul.MatchString(value) {
		return value
	}
	if english, ok := makerIndex[value]; ok {
		return value + " (" + english + ")"
	}
	return value
}
