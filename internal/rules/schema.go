package rules

// ruleFileSchema 约束规则文件的结构，加载时先过一遍 JSON Schema，
// 再做正则编译级别的细校验。
const ruleFileSchema = `{
  "type": "object",
  "required": ["filter"],
  "properties": {
    "filter": {
      "type": "object",
      "required": ["trading_keywords"],
      "properties": {
        "exclude_keywords": {"type": "array", "items": {"type": "string"}},
        "trading_keywords": {"type": "array", "items": {"type": "string"}, "minItems": 1},
        "exclude_patterns": {"type": "array", "items": {"type": "string"}}
      },
      "additionalProperties": false
    },
    "fields": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["pattern"],
          "properties": {
            "pattern": {"type": "string", "minLength": 1},
            "tag": {"type": "string"}
          },
          "additionalProperties": false
        }
      }
    }
  },
  "additionalProperties": false
}`
