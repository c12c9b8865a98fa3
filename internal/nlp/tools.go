package nlp

import (
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

func strProp(desc string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.String, Description: desc}
}

func tool(name, desc string, props map[string]jsonschema.Definition, required ...string) openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        name,
			Description: desc,
			Parameters: jsonschema.Definition{
				Type:       jsonschema.Object,
				Properties: props,
				Required:   required,
			},
		},
	}
}

// toolCatalogue is the fixed set of operations offered to the model.
// Descriptions are the user-facing contract with the model; tune behavior
// here rather than in the dispatch code.
var toolCatalogue = []openai.Tool{
	tool("add_event",
		"캘린더에 새 일정을 추가합니다. 사용자가 일정 추가를 요청할 때 호출하세요.",
		map[string]jsonschema.Definition{
			"title":       strProp("일정 제목"),
			"date":        strProp("날짜 (YYYY-MM-DD 형식). 상대 날짜는 절대 날짜로 변환"),
			"start_time":  strProp("시작 시간 (HH:MM 형식, 24시간)"),
			"end_time":    strProp("종료 시간 (HH:MM 형식, 24시간). 언급 없으면 생략"),
			"description": strProp("일정 설명. 언급 없으면 생략"),
		},
		"title", "date", "start_time"),

	tool("add_events_by_range",
		"날짜 구간에 【시간이 있는】 일정을 날짜마다 별도로 추가합니다(N개 이벤트 생성). "+
			"'24일~26일 오전 9시 회의', '월~금 매일 10시 스탠드업' 등 반복 미팅에 사용하세요. "+
			"⚠️ 시간이 없는 출장/휴가/연차는 add_multiday_event를 쓰세요.",
		map[string]jsonschema.Definition{
			"title":       strProp("일정 제목"),
			"date_from":   strProp("시작 날짜 (YYYY-MM-DD)"),
			"date_to":     strProp("종료 날짜 (YYYY-MM-DD)"),
			"start_time":  strProp("시작 시간 (HH:MM 형식, 24시간)"),
			"end_time":    strProp("종료 시간 (HH:MM 형식, 24시간). 언급 없으면 생략"),
			"description": strProp("일정 설명. 언급 없으면 생략"),
		},
		"title", "date_from", "date_to", "start_time"),

	tool("add_multiday_event",
		"날짜 구간 전체를 아우르는 【종일(시간 없음) 단일 이벤트 1개】를 추가합니다. "+
			"출장, 휴가, 여행, 연차 등 기간 일정에 사용하세요. 예: '2/28~3/10 브라질 출장', "+
			"'다음주 월~금 연차'. ⚠️ 시간이 언급된 경우(예: 오전 9시)는 add_events_by_range를 쓰세요.",
		map[string]jsonschema.Definition{
			"title":       strProp("일정 제목"),
			"date_from":   strProp("시작 날짜 (YYYY-MM-DD)"),
			"date_to":     strProp("종료 날짜 (YYYY-MM-DD)"),
			"description": strProp("일정 설명. 언급 없으면 생략"),
		},
		"title", "date_from", "date_to"),

	tool("delete_event",
		"캘린더에서 일정을 삭제합니다. 사용자가 삭제/취소/지워줘 등을 요청할 때 호출하세요.",
		map[string]jsonschema.Definition{
			"title":         strProp("삭제할 일정 제목 (부분 일치 가능). 제목을 모르면 빈 문자열"),
			"date":          strProp("일정 날짜 (YYYY-MM-DD 형식)"),
			"original_time": strProp("기존 시작 시간 (HH:MM). 사용자가 시간으로 일정을 지칭한 경우"),
		},
		"title", "date"),

	tool("delete_events_by_range",
		"특정 기간의 일정을 일괄 삭제합니다. '2월 일정 다 지워줘', '이번 주 일정 전부 삭제' 등에 호출하세요.",
		map[string]jsonschema.Definition{
			"date_from": strProp("삭제 시작일 (YYYY-MM-DD)"),
			"date_to":   strProp("삭제 종료일 (YYYY-MM-DD). 월 단위 시 해당 월 마지막 날"),
			"keyword":   strProp("특정 키워드 일정만 삭제. 전부 삭제 시 생략"),
		},
		"date_from", "date_to"),

	tool("edit_event",
		"캘린더 일정을 수정합니다. 사용자가 변경/수정/바꿔/옮겨 등을 요청할 때 호출하세요.",
		map[string]jsonschema.Definition{
			"title":         strProp("수정할 일정 제목 (부분 일치 가능). 제목을 모르면 빈 문자열"),
			"date":          strProp("현재 일정 날짜 (YYYY-MM-DD 형식)"),
			"original_time": strProp("기존 시작 시간 (HH:MM). 사용자가 시간으로 일정을 지칭한 경우"),
			"changes": {
				Type:        jsonschema.Object,
				Description: "변경할 내용. 변경하지 않는 항목은 생략",
				Properties: map[string]jsonschema.Definition{
					"title":       strProp("새 제목"),
					"date":        strProp("새 날짜 (YYYY-MM-DD)"),
					"start_time":  strProp("새 시작 시간 (HH:MM)"),
					"end_time":    strProp("새 종료 시간 (HH:MM)"),
					"description": strProp("새 설명"),
				},
			},
		},
		"title", "date", "changes"),

	tool("get_today_events",
		"오늘 일정을 조회합니다. '오늘 일정', '오늘 뭐 있어?' 등의 요청에 호출하세요.",
		map[string]jsonschema.Definition{}),

	tool("get_week_events",
		"이번 주 일정을 조회합니다. '이번 주 일정', '주간 일정', '이번주 뭐 있어?' 등의 요청에 호출하세요.",
		map[string]jsonschema.Definition{}),

	tool("search_events",
		"일정을 검색합니다. 특정 기간이나 키워드로 일정을 찾을 때 호출하세요. 예: '3월 일정', '회의 검색', '다음 주 뭐 있어?'",
		map[string]jsonschema.Definition{
			"keyword":   strProp("검색 키워드. 없으면 생략"),
			"date_from": strProp("검색 시작일 (YYYY-MM-DD)"),
			"date_to":   strProp("검색 종료일 (YYYY-MM-DD). 월 단위 검색 시 해당 월 마지막 날"),
		}),

	tool("navigate",
		"길찾기를 제공합니다. 직접 장소명/주소를 지정하거나, 이전 대화의 캘린더 일정 장소로 이동할 때 사용하세요. "+
			"직접 장소를 말한 경우 destination 입력. '4번 일정 길찾기', '그 일정 가는 법'처럼 "+
			"이전 대화의 일정을 참조하는 경우 title과 date 입력.",
		map[string]jsonschema.Definition{
			"destination": strProp("직접 지정 목적지 이름 또는 주소. 예: '강남역', '서울역'. 사용자가 장소명/주소를 직접 말한 경우에만 입력"),
			"title":       strProp("캘린더 일정 제목 또는 키워드. 이전 대화의 일정을 참조하는 경우 해당 일정 제목 입력"),
			"date":        strProp("일정 날짜 (YYYY-MM-DD 형식). 이전 대화의 일정을 참조하는 경우 입력"),
		}),
}
